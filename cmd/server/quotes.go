package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/printshop-quotes/internal/pricing"
)

const createdAtLayout = "2006-01-02 15:04:05.000000"

var errQuoteNotFound = errors.New("quote not found")

type quoteCreateRequest struct {
	Title     string             `json:"title" validate:"max=200"`
	Notes     string             `json:"notes" validate:"max=2000"`
	ProductID int64              `json:"productId" validate:"required,gt=0"`
	Quantity  float64            `json:"quantity" validate:"required,gt=0"`
	Params    map[string]any     `json:"params"`
	Overrides *pricing.Overrides `json:"overrides"`
}

type quoteListItem struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdAt"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
}

// quoteSnapshot is a saved quote. Result holds the engine output exactly as
// it was returned when the quote was saved.
type quoteSnapshot struct {
	ID         string          `json:"id"`
	CreatedAt  string          `json:"createdAt"`
	Title      string          `json:"title"`
	Notes      string          `json:"notes"`
	ProductID  int64           `json:"productId"`
	Quantity   float64         `json:"quantity"`
	CustomerID *int64          `json:"customerId,omitempty"`
	Result     json.RawMessage `json:"result"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteCreateRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.CalcQuote(r.Context(), req.ProductID, req.Quantity, req.Params, req.Overrides)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	snapshot, err := newQuoteSnapshot(req, res, time.Now())
	if err != nil {
		s.logger.Error("failed to encode quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}
	if err := s.saveQuote(r.Context(), snapshot); err != nil {
		s.logger.Error("failed to save quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func newQuoteSnapshot(req quoteCreateRequest, res *pricing.QuoteResult, now time.Time) (quoteSnapshot, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return quoteSnapshot{}, err
	}
	snapshot := quoteSnapshot{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC().Format(createdAtLayout),
		Title:     strings.TrimSpace(req.Title),
		Notes:     strings.TrimSpace(req.Notes),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Result:    raw,
	}
	if req.Overrides != nil {
		snapshot.CustomerID = req.Overrides.CustomerID
	}
	return snapshot, nil
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(r.Context(), query)
	if err != nil {
		s.logger.Error("failed to load quotes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	snapshot, err := s.getQuote(r.Context(), id)
	if errors.Is(err, errQuoteNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to load quote", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quote")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *server) saveQuote(ctx context.Context, q quoteSnapshot) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO quotes (id, created_at, title, notes, product_id, quantity, customer_id, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), q.ID, q.CreatedAt, q.Title, q.Notes, q.ProductID, q.Quantity, q.CustomerID, string(q.Result))
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.ID, err)
	}
	return nil
}

func (s *server) getQuote(ctx context.Context, id string) (quoteSnapshot, error) {
	var row struct {
		ID         string        `db:"id"`
		CreatedAt  string        `db:"created_at"`
		Title      string        `db:"title"`
		Notes      string        `db:"notes"`
		ProductID  int64         `db:"product_id"`
		Quantity   float64       `db:"quantity"`
		CustomerID sql.NullInt64 `db:"customer_id"`
		TotalsJSON string        `db:"totals_json"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, created_at, COALESCE(title, '') AS title, COALESCE(notes, '') AS notes,
			product_id, quantity, customer_id, totals_json
		FROM quotes
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return quoteSnapshot{}, errQuoteNotFound
	}
	if err != nil {
		return quoteSnapshot{}, fmt.Errorf("select quote %s: %w", id, err)
	}

	q := quoteSnapshot{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		Title:     row.Title,
		Notes:     row.Notes,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		Result:    json.RawMessage(row.TotalsJSON),
	}
	if row.CustomerID.Valid {
		q.CustomerID = &row.CustomerID.Int64
	}
	return q, nil
}

func (s *server) listQuotes(ctx context.Context, query string) ([]quoteListItem, error) {
	search := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			totals_json
		FROM quotes
		WHERE (? = '' OR LOWER(COALESCE(title, '')) LIKE ? OR LOWER(COALESCE(notes, '')) LIKE ?)
		ORDER BY created_at DESC, id DESC
	`), query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &totalsJSON); err != nil {
			return nil, err
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotes, nil
}

// extractTotalFromJSON reads the net total of a snapshot. Older snapshots
// stored it under "total".
func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"final", "total"} {
		raw, ok := values[key]
		if !ok {
			continue
		}
		var total float64
		if err := json.Unmarshal(raw, &total); err == nil {
			return total
		}
	}

	return 0
}
