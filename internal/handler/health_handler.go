package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// Health はプロセスの生存確認に応答する。依存先（DB）の疎通は確認しない。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
