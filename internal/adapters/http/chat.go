package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const maxChatBodyBytes = 1 << 20

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	reply, err := rt.svc.Chat.Reply(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
