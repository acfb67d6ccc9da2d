package http

import "net/http"

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	sum, err := s.summary.Build(ctx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, sum)
}
