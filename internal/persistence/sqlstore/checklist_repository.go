package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/hacktown-ops/internal/event"
)

const infrastructureColumns = `venue_id, alvara, alvara_providenciado, avcb, avcb_providenciado,
	revisao, revisao_providenciada, reforma, reforma_providenciada, status`

const audiovisualColumns = `venue_id, microfone, microfone_providenciado, projetor, projetor_providenciado,
	cabo_hdmi, cabo_hdmi_providenciado, passador_slide, passador_slide_providenciado,
	caixa_som, caixa_som_providenciada, tela, tela_providenciada, status`

func scanInfrastructure(row rowScanner) (event.Infrastructure, error) {
	var i event.Infrastructure
	err := row.Scan(&i.VenueID, &i.Alvara, &i.AlvaraProvidenciado, &i.Avcb, &i.AvcbProvidenciado,
		&i.Revisao, &i.RevisaoProvidenciada, &i.Reforma, &i.ReformaProvidenciada, &i.Status)
	return i, err
}

func scanAudiovisual(row rowScanner) (event.Audiovisual, error) {
	var a event.Audiovisual
	err := row.Scan(&a.VenueID, &a.Microfone, &a.MicrofoneProvidenciado, &a.Projetor, &a.ProjetorProvidenciado,
		&a.CaboHdmi, &a.CaboHdmiProvidenciado, &a.PassadorSlide, &a.PassadorSlideProvidenciado,
		&a.CaixaSom, &a.CaixaSomProvidenciada, &a.Tela, &a.TelaProvidenciada, &a.Status)
	return a, err
}

// ListInfrastructure returns the infrastructure checklist of every venue that has one.
func (s *Store) ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error) {
	rows, err := s.pool.query(ctx, s.pool.db,
		`SELECT `+infrastructureColumns+` FROM venue_infrastructure ORDER BY venue_id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []event.Infrastructure{}
	for rows.Next() {
		item, err := scanInfrastructure(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// GetInfrastructure returns the checklist of one venue.
func (s *Store) GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error) {
	item, err := scanInfrastructure(s.pool.queryRow(ctx, s.pool.db,
		`SELECT `+infrastructureColumns+` FROM venue_infrastructure WHERE venue_id = ?`, venueID))
	if err != nil {
		return event.Infrastructure{}, mapError(err)
	}
	return item, nil
}

func (s *Store) upsertInfrastructure(ctx context.Context, q querier, i event.Infrastructure) error {
	_, err := s.pool.exec(ctx, q, `
		INSERT INTO venue_infrastructure (`+infrastructureColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (venue_id) DO UPDATE SET
			alvara = excluded.alvara,
			alvara_providenciado = excluded.alvara_providenciado,
			avcb = excluded.avcb,
			avcb_providenciado = excluded.avcb_providenciado,
			revisao = excluded.revisao,
			revisao_providenciada = excluded.revisao_providenciada,
			reforma = excluded.reforma,
			reforma_providenciada = excluded.reforma_providenciada,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		i.VenueID, i.Alvara, i.AlvaraProvidenciado, i.Avcb, i.AvcbProvidenciado,
		i.Revisao, i.RevisaoProvidenciada, i.Reforma, i.ReformaProvidenciada, i.Status, s.timestamp())
	return err
}

// UpsertInfrastructure creates or replaces the checklist of a venue.
func (s *Store) UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error) {
	err := s.write(ctx, "UpsertInfrastructure", func(tx *sql.Tx) error {
		return s.upsertInfrastructure(ctx, tx, item)
	})
	if err != nil {
		return event.Infrastructure{}, err
	}
	return item, nil
}

// BatchUpsertInfrastructure upserts every item in one transaction.
func (s *Store) BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error) {
	err := s.write(ctx, "BatchUpsertInfrastructure", func(tx *sql.Tx) error {
		for _, item := range items {
			if err := s.upsertInfrastructure(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]event.Infrastructure, len(items))
	copy(out, items)
	return out, nil
}

// DeleteInfrastructure removes the checklist of a venue.
func (s *Store) DeleteInfrastructure(ctx context.Context, venueID string) error {
	return s.write(ctx, "DeleteInfrastructure", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `DELETE FROM venue_infrastructure WHERE venue_id = ?`, venueID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

// ListAudiovisual returns the audiovisual checklist of every venue that has one.
func (s *Store) ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error) {
	rows, err := s.pool.query(ctx, s.pool.db,
		`SELECT `+audiovisualColumns+` FROM venue_audiovisual ORDER BY venue_id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := []event.Audiovisual{}
	for rows.Next() {
		item, err := scanAudiovisual(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// GetAudiovisual returns the audiovisual checklist of one venue.
func (s *Store) GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error) {
	item, err := scanAudiovisual(s.pool.queryRow(ctx, s.pool.db,
		`SELECT `+audiovisualColumns+` FROM venue_audiovisual WHERE venue_id = ?`, venueID))
	if err != nil {
		return event.Audiovisual{}, mapError(err)
	}
	return item, nil
}

func (s *Store) upsertAudiovisual(ctx context.Context, q querier, a event.Audiovisual) error {
	_, err := s.pool.exec(ctx, q, `
		INSERT INTO venue_audiovisual (`+audiovisualColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (venue_id) DO UPDATE SET
			microfone = excluded.microfone,
			microfone_providenciado = excluded.microfone_providenciado,
			projetor = excluded.projetor,
			projetor_providenciado = excluded.projetor_providenciado,
			cabo_hdmi = excluded.cabo_hdmi,
			cabo_hdmi_providenciado = excluded.cabo_hdmi_providenciado,
			passador_slide = excluded.passador_slide,
			passador_slide_providenciado = excluded.passador_slide_providenciado,
			caixa_som = excluded.caixa_som,
			caixa_som_providenciada = excluded.caixa_som_providenciada,
			tela = excluded.tela,
			tela_providenciada = excluded.tela_providenciada,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		a.VenueID, a.Microfone, a.MicrofoneProvidenciado, a.Projetor, a.ProjetorProvidenciado,
		a.CaboHdmi, a.CaboHdmiProvidenciado, a.PassadorSlide, a.PassadorSlideProvidenciado,
		a.CaixaSom, a.CaixaSomProvidenciada, a.Tela, a.TelaProvidenciada, a.Status, s.timestamp())
	return err
}

// UpsertAudiovisual creates or replaces the audiovisual checklist of a venue.
func (s *Store) UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error) {
	err := s.write(ctx, "UpsertAudiovisual", func(tx *sql.Tx) error {
		return s.upsertAudiovisual(ctx, tx, item)
	})
	if err != nil {
		return event.Audiovisual{}, err
	}
	return item, nil
}

// BatchUpsertAudiovisual upserts every item in one transaction.
func (s *Store) BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error) {
	err := s.write(ctx, "BatchUpsertAudiovisual", func(tx *sql.Tx) error {
		for _, item := range items {
			if err := s.upsertAudiovisual(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]event.Audiovisual, len(items))
	copy(out, items)
	return out, nil
}

// DeleteAudiovisual removes the audiovisual checklist of a venue.
func (s *Store) DeleteAudiovisual(ctx context.Context, venueID string) error {
	return s.write(ctx, "DeleteAudiovisual", func(tx *sql.Tx) error {
		res, err := s.pool.exec(ctx, tx, `DELETE FROM venue_audiovisual WHERE venue_id = ?`, venueID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}
