// Package store implements the source-of-truth record store on PostgreSQL.
// It owns the record write path and dispatches the five lifecycle events
// (pre-create, pre-update, post-create, post-update, post-delete) that drive
// write-time enrichment and search-index synchronization.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lib/pq"

	"github.com/proposalhub/search-sync/internal/record"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
	"github.com/proposalhub/search-sync/pkg/postgres"
)

// Store is the PostgreSQL-backed record store.
type Store struct {
	db     *postgres.Client
	hooks  hooks
	logger *slog.Logger
}

// New creates a Store over the given PostgreSQL client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "record-store"),
	}
}

// recordColumns is the canonical column list for scanning records.
const recordColumns = `id, document_id, sf_number, unique_id, name,
	client_name, client_contact, buying_center_contact, description,
	author, smes, competitors, submission_date,
	confidentiality, industry, sub_industry, service, service_line,
	region, market, document_type, outcome, deal_size,
	engagement_type, delivery_model, practice, sector, stage,
	manual_override, locale, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one record row (without attachments).
func scanRecord(row rowScanner) (*record.SourceRecord, error) {
	var (
		r           record.SourceRecord
		description []byte
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.DocumentID, &r.SFNumber, &r.UniqueID, &r.Name,
		&r.ClientName, &r.ClientContact, &r.BuyingCenterContact, &description,
		&r.Author, &r.SMEs, &r.Competitors, &r.SubmissionDate,
		&r.Confidentiality, &r.Industry, &r.SubIndustry, &r.Service, &r.ServiceLine,
		&r.Region, &r.Market, &r.DocumentType, &r.Outcome, &r.DealSize,
		&r.EngagementType, &r.DeliveryModel, &r.Practice, &r.Sector, &r.Stage,
		&r.ManualOverride, &r.Locale, &publishedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(description) > 0 {
		if err := json.Unmarshal(description, &r.Description); err != nil {
			return nil, fmt.Errorf("decoding description for record %d: %w", r.ID, err)
		}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		r.PublishedAt = &t
	}
	return &r, nil
}

// GetByID returns the record with its attachments populated.
func (s *Store) GetByID(ctx context.Context, id int64) (*record.SourceRecord, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrRecordNotFound, http.StatusNotFound, "record %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %d: %w", id, err)
	}
	if err := s.loadAttachments(ctx, map[int64]*record.SourceRecord{r.ID: r}); err != nil {
		return nil, err
	}
	return r, nil
}

// GetByDocumentID returns the record identified by its stable document
// identifier, with attachments populated.
func (s *Store) GetByDocumentID(ctx context.Context, documentID string) (*record.SourceRecord, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE document_id = $1`, documentID)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrRecordNotFound, http.StatusNotFound, "document %s", documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", documentID, err)
	}
	if err := s.loadAttachments(ctx, map[int64]*record.SourceRecord{r.ID: r}); err != nil {
		return nil, err
	}
	return r, nil
}

// ListPublished returns every published record with attachments, for bulk
// index rebuilds. The page size is unbounded.
func (s *Store) ListPublished(ctx context.Context) ([]record.SourceRecord, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE published_at IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying published records: %w", err)
	}
	defer rows.Close()

	var records []record.SourceRecord
	byID := make(map[int64]*record.SourceRecord)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning published record: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating published records: %w", err)
	}
	for i := range records {
		byID[records[i].ID] = &records[i]
	}
	if err := s.loadAttachments(ctx, byID); err != nil {
		return nil, err
	}
	return records, nil
}

// loadAttachments populates the attachments of every record in byID with a
// single query.
func (s *Store) loadAttachments(ctx context.Context, byID map[int64]*record.SourceRecord) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT record_id, name, alternative_text, caption, url, size, mime
		 FROM attachments WHERE record_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recordID int64
			a        record.Attachment
		)
		if err := rows.Scan(&recordID, &a.Name, &a.AlternativeText, &a.Caption, &a.URL, &a.Size, &a.MimeType); err != nil {
			return fmt.Errorf("scanning attachment: %w", err)
		}
		if r, ok := byID[recordID]; ok {
			r.Attachments = append(r.Attachments, a)
		}
	}
	return rows.Err()
}

// Create runs pre-create hooks against the draft, persists it, and dispatches
// post-create hooks with the stored record.
func (s *Store) Create(ctx context.Context, draft *record.Draft) (*record.SourceRecord, error) {
	for _, h := range s.hooks.preCreate {
		if err := h(ctx, draft); err != nil {
			return nil, fmt.Errorf("pre-create hook: %w", err)
		}
	}

	if draft.DocumentID == "" {
		draft.DocumentID = newDocumentID()
	}
	description, err := json.Marshal(draft.Description)
	if err != nil {
		return nil, fmt.Errorf("encoding description: %w", err)
	}

	var publishedAt any
	if draft.PublishedAt.Set && draft.PublishedAt.Value != nil {
		publishedAt = *draft.PublishedAt.Value
	}

	var id int64
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO records (
				document_id, sf_number, unique_id, name,
				client_name, client_contact, buying_center_contact, description,
				author, smes, competitors, submission_date,
				confidentiality, industry, sub_industry, service, service_line,
				region, market, document_type, outcome, deal_size,
				engagement_type, delivery_model, practice, sector, stage,
				manual_override, locale, published_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
			) RETURNING id`,
			draft.DocumentID, draft.SFNumber, draft.UniqueID, draft.Name,
			draft.ClientName, draft.ClientContact, draft.BuyingCenterContact, description,
			draft.Author, draft.SMEs, draft.Competitors, draft.SubmissionDate,
			draft.Confidentiality, draft.Industry, draft.SubIndustry, draft.Service, draft.ServiceLine,
			draft.Region, draft.Market, draft.DocumentType, draft.Outcome, draft.DealSize,
			draft.EngagementType, draft.DeliveryModel, draft.Practice, draft.Sector, draft.Stage,
			draft.ManualOverride, draft.Locale, publishedAt,
		).Scan(&id)
		if err != nil {
			return err
		}
		return insertAttachments(ctx, tx, id, draft.Attachments)
	})
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading record %d after create: %w", id, err)
	}
	for _, h := range s.hooks.postCreate {
		h(ctx, rec)
	}
	return rec, nil
}

// Update runs pre-update hooks with the stored record, applies the draft's
// set fields, and dispatches post-update hooks with the persisted record
// re-read from the store. Empty string fields are not part of the update; the
// publication timestamp is applied only when explicitly set.
func (s *Store) Update(ctx context.Context, id int64, draft *record.Draft) (*record.SourceRecord, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, h := range s.hooks.preUpdate {
		if err := h(ctx, draft, current); err != nil {
			return nil, fmt.Errorf("pre-update hook: %w", err)
		}
	}

	set := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	for column, value := range map[string]string{
		"sf_number":             draft.SFNumber,
		"unique_id":             draft.UniqueID,
		"name":                  draft.Name,
		"client_name":           draft.ClientName,
		"client_contact":        draft.ClientContact,
		"buying_center_contact": draft.BuyingCenterContact,
		"author":                draft.Author,
		"smes":                  draft.SMEs,
		"competitors":           draft.Competitors,
		"submission_date":       draft.SubmissionDate,
		"confidentiality":       draft.Confidentiality,
		"industry":              draft.Industry,
		"sub_industry":          draft.SubIndustry,
		"service":               draft.Service,
		"service_line":          draft.ServiceLine,
		"region":                draft.Region,
		"market":                draft.Market,
		"document_type":         draft.DocumentType,
		"outcome":               draft.Outcome,
		"deal_size":             draft.DealSize,
		"engagement_type":       draft.EngagementType,
		"delivery_model":        draft.DeliveryModel,
		"practice":              draft.Practice,
		"sector":                draft.Sector,
		"stage":                 draft.Stage,
		"locale":                draft.Locale,
	} {
		if value != "" {
			add(column, value)
		}
	}
	if !draft.Description.IsEmpty() {
		description, err := json.Marshal(draft.Description)
		if err != nil {
			return nil, fmt.Errorf("encoding description: %w", err)
		}
		add("description", description)
	}
	if draft.PublishedAt.Set {
		if draft.PublishedAt.Value != nil {
			add("published_at", *draft.PublishedAt.Value)
		} else {
			set = append(set, "published_at = NULL")
		}
	}

	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE records SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		if draft.Attachments != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE record_id = $1`, id); err != nil {
				return err
			}
			return insertAttachments(ctx, tx, id, draft.Attachments)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating record %d: %w", id, err)
	}

	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading record %d after update: %w", id, err)
	}
	for _, h := range s.hooks.postUpdate {
		h(ctx, rec)
	}
	return rec, nil
}

// Delete removes the record and dispatches post-delete hooks with the record
// as it was before deletion.
func (s *Store) Delete(ctx context.Context, id int64) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE record_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting record %d: %w", id, err)
	}

	for _, h := range s.hooks.postDelete {
		h(ctx, rec)
	}
	return nil
}

func insertAttachments(ctx context.Context, tx *sql.Tx, recordID int64, attachments []record.Attachment) error {
	for _, a := range attachments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attachments (record_id, name, alternative_text, caption, url, size, mime)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			recordID, a.Name, a.AlternativeText, a.Caption, a.URL, a.Size, a.MimeType,
		)
		if err != nil {
			return fmt.Errorf("inserting attachment %s: %w", a.Name, err)
		}
	}
	return nil
}

// newDocumentID generates a stable 24-hex-char document identifier.
func newDocumentID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}
