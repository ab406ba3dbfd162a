// internal/handlers/qr.go
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

// handleQR renders a PNG QR code pointing players at the room's join page.
func (a *APIServer) handleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h, ok := a.lookup(w, ps)
	if !ok {
		return
	}
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "Room ID required")
		return
	}
	found, err := h.exists(r.Context(), roomID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}

	png, err := qrcode.Encode(a.joinURL(r, ps.ByName("game"), roomID), qrcode.Medium, qrSize)
	if err != nil {
		a.logger.WithError(err).Error("qr generation failed")
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// joinURL prefers the configured public URL, then the request's own scheme
// and host (respecting X-Forwarded-Proto).
func (a *APIServer) joinURL(r *http.Request, gameName, roomID string) string {
	base := strings.TrimSuffix(a.publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/games/" + gameName + "?roomId=" + url.QueryEscape(roomID)
}
