package event

// Infrastructure is the licensing and works checklist of a venue.
type Infrastructure struct {
	VenueID              string
	Alvara               bool
	AlvaraProvidenciado  bool
	Avcb                 bool
	AvcbProvidenciado    bool
	Revisao              bool
	RevisaoProvidenciada bool
	Reforma              bool
	ReformaProvidenciada bool
	Status               string
}

// Audiovisual is the equipment checklist of a venue.
type Audiovisual struct {
	VenueID                    string
	Microfone                  bool
	MicrofoneProvidenciado     bool
	Projetor                   bool
	ProjetorProvidenciado      bool
	CaboHdmi                   bool
	CaboHdmiProvidenciado      bool
	PassadorSlide              bool
	PassadorSlideProvidenciado bool
	CaixaSom                   bool
	CaixaSomProvidenciada      bool
	Tela                       bool
	TelaProvidenciada          bool
	Status                     string
}

// Requirement is one needed/provided pair of a checklist.
type Requirement struct {
	Name     string
	Needed   bool
	Provided bool
}

// Pending reports a requirement that is needed but not yet provided.
func (r Requirement) Pending() bool {
	return r.Needed && !r.Provided
}

// Requirements lists the infrastructure pairs in display order.
func (i Infrastructure) Requirements() []Requirement {
	return []Requirement{
		{Name: "alvara", Needed: i.Alvara, Provided: i.AlvaraProvidenciado},
		{Name: "avcb", Needed: i.Avcb, Provided: i.AvcbProvidenciado},
		{Name: "revisao", Needed: i.Revisao, Provided: i.RevisaoProvidenciada},
		{Name: "reforma", Needed: i.Reforma, Provided: i.ReformaProvidenciada},
	}
}

// Requirements lists the audiovisual pairs in display order.
func (a Audiovisual) Requirements() []Requirement {
	return []Requirement{
		{Name: "microfone", Needed: a.Microfone, Provided: a.MicrofoneProvidenciado},
		{Name: "projetor", Needed: a.Projetor, Provided: a.ProjetorProvidenciado},
		{Name: "caboHdmi", Needed: a.CaboHdmi, Provided: a.CaboHdmiProvidenciado},
		{Name: "passadorSlide", Needed: a.PassadorSlide, Provided: a.PassadorSlideProvidenciado},
		{Name: "caixaSom", Needed: a.CaixaSom, Provided: a.CaixaSomProvidenciada},
		{Name: "tela", Needed: a.Tela, Provided: a.TelaProvidenciada},
	}
}

// RequirementSummary counts venues needing each requirement and how many of
// those are still pending.
type RequirementSummary struct {
	Name    string
	Needed  int
	Pending int
}

// SummarizeRequirements folds per-venue requirement lists into counts,
// preserving the order of the first list.
func SummarizeRequirements(lists [][]Requirement) []RequirementSummary {
	var out []RequirementSummary
	index := make(map[string]int)
	for _, list := range lists {
		for _, req := range list {
			pos, ok := index[req.Name]
			if !ok {
				pos = len(out)
				index[req.Name] = pos
				out = append(out, RequirementSummary{Name: req.Name})
			}
			if req.Needed {
				out[pos].Needed++
			}
			if req.Pending() {
				out[pos].Pending++
			}
		}
	}
	return out
}
