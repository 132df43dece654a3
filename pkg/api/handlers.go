package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/board"
	"github.com/matzehuels/blockdrop/pkg/buildinfo"
	"github.com/matzehuels/blockdrop/pkg/errors"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

type heightsRequest struct {
	Scenarios []string `json:"scenarios"`
	OnInvalid string   `json:"on_invalid,omitempty"`
}

type skippedToken struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type heightsResponse struct {
	Heights []int          `json:"heights"`
	Skipped []skippedToken `json:"skipped,omitempty"`
	Stats   batch.Stats    `json:"stats"`
}

type boardRequest struct {
	Scenario  string `json:"scenario"`
	OnInvalid string `json:"on_invalid,omitempty"`
}

type stepResponse struct {
	Drop    string `json:"drop"`
	Landed  int    `json:"landed"`
	Cleared int    `json:"cleared"`
	Height  int    `json:"height"`
}

type boardResponse struct {
	Height int            `json:"height"`
	Rows   []string       `json:"rows"`
	Steps  []stepResponse `json:"steps"`
}

type shapeResponse struct {
	ID    string   `json:"id"`
	Width int      `json:"width"`
	Rows  []string `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	shapes := board.Shapes()
	out := make([]shapeResponse, len(shapes))
	for i, sh := range shapes {
		b := board.New()
		b.Drop(sh, 0)
		out[i] = shapeResponse{ID: string(sh.ID), Width: sh.Width, Rows: b.Lines()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHeights(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	runner := *s.runner

	var (
		res *batch.Result
		err error
	)
	if isJSON(r) {
		var req heightsRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeErr(w, decodeError(err))
			return
		}
		if runner.Policy, err = policyOverride(req.OnInvalid, runner.Policy); err != nil {
			writeErr(w, err)
			return
		}
		res, err = runner.RunLines(r.Context(), req.Scenarios)
	} else {
		if runner.Policy, err = policyOverride(r.URL.Query().Get("on_invalid"), runner.Policy); err != nil {
			writeErr(w, err)
			return
		}
		res, err = runner.Run(r.Context(), body)
	}
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := heightsResponse{Heights: res.Heights, Stats: res.Stats}
	for _, le := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedToken{Line: le.Line, Error: le.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeErr(w, decodeError(err))
		return
	}
	policy, err := policyOverride(req.OnInvalid, s.runner.Policy)
	if err != nil {
		writeErr(w, err)
		return
	}
	sc, err := scenario.Parse(req.Scenario, policy)
	if err != nil {
		writeErr(w, err)
		return
	}

	steps, b := batch.Trace(sc)
	resp := boardResponse{Height: b.Height(), Rows: b.Lines(), Steps: make([]stepResponse, len(steps))}
	for i, st := range steps {
		resp.Steps[i] = stepResponse{Drop: st.Drop.String(), Landed: st.Landed, Cleared: st.Cleared, Height: st.Height}
	}
	writeJSON(w, http.StatusOK, resp)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func policyOverride(value string, def scenario.Policy) (scenario.Policy, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	p, err := scenario.ParsePolicy(value)
	if err != nil {
		return def, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid on_invalid value %q", value)
	}
	return p, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
}
