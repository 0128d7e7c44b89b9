package httpapi

import (
	"errors"
	"net/http"

	"github.com/argea-gh/herbaprimax-V3/internal/preferences"
	"go.uber.org/zap"
)

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.prefs.Theme(r.Context())
	if err != nil {
		h.logger.Error("read theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: string(t)})
}

func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	t, err := h.prefs.SetTheme(r.Context(), req.Theme)
	switch {
	case errors.Is(err, preferences.ErrInvalidTheme):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("store theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: string(t)})
}
