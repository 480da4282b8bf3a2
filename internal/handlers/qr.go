package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// HandleQR serves a PNG QR code of the join URL for the instance, for
// sharing the game with nearby players
func (ctx *Context) HandleQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, _, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}

	joinURL := ctx.BaseURL + "/?instance=" + url.QueryEscape(instance)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, size)
	if err != nil {
		ctx.Logger.Printf("qr: encode: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
