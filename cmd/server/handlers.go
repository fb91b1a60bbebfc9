package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/export"
	"github.com/Simplici0/printshop-quotes/internal/pricing"
)

const maxBodyBytes = 1 << 20

type calcRequest struct {
	ProductID int64              `json:"productId" validate:"required,gt=0"`
	Quantity  float64            `json:"quantity" validate:"required,gt=0"`
	Params    map[string]any     `json:"params"`
	Overrides *pricing.Overrides `json:"overrides"`
}

type matrixRequest struct {
	ProductID  int64              `json:"productId" validate:"required,gt=0"`
	Quantities []float64          `json:"quantities" validate:"required,min=1,dive,gt=0"`
	Params     map[string]any     `json:"params"`
	Overrides  *pricing.Overrides `json:"overrides"`
}

type matrixResponse struct {
	ProductID int64               `json:"productId"`
	Rows      []pricing.MatrixRow `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleCalc(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.engine.CalcQuote(r.Context(), req.ProductID, req.Quantity, req.Params, req.Overrides)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMatrix(w, r)
	if !ok {
		return
	}

	rows, err := s.engine.Matrix(r.Context(), req.ProductID, req.Quantities, req.Params, req.Overrides)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{ProductID: req.ProductID, Rows: rows})
}

func (s *server) handleMatrixXLSX(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMatrix(w, r)
	if !ok {
		return
	}

	rows, err := s.engine.Matrix(r.Context(), req.ProductID, req.Quantities, req.Params, req.Overrides)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	meta := export.MatrixMeta{ProductID: req.ProductID}
	if product, err := s.store.GetProduct(r.Context(), req.ProductID); err == nil {
		meta.ProductName = product.Name
	}

	var buf bytes.Buffer
	if err := export.WriteMatrixXLSX(&buf, meta, rows); err != nil {
		s.logger.Error("failed to render matrix workbook", zap.Int64("product_id", req.ProductID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="matrix-%d.xlsx"`, req.ProductID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) decodeMatrix(w http.ResponseWriter, r *http.Request) (matrixRequest, bool) {
	var req matrixRequest
	if !s.decode(w, r, &req) {
		return req, false
	}
	if s.maxQuantities > 0 && len(req.Quantities) > s.maxQuantities {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d quantities per matrix", s.maxQuantities))
		return req, false
	}
	return req, true
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports whether the handler may continue.
func (s *server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func engineStatus(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrInvalidProductID),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrNoQuantities),
		errors.Is(err, pricing.ErrDuplicateQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, pricing.ErrConfigMissing):
		return http.StatusInternalServerError, pricing.ErrConfigMissing.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := engineStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("quote failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
