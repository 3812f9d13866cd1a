// Local stand-in for the chat automation webhook and the payment provider.
//
//	CHAT_WEBHOOK_URL=http://localhost:3001/webhook/chat
//	CHECKOUT_API_URL=http://localhost:3001/payments
package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	mux := http.NewServeMux()

	mux.HandleFunc("/webhook/chat", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&in)
		log.Info("chat webhook called", zap.Any("user_id", in["user_id"]))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"output": "Echo: " + toString(in["message"]),
			"at":     time.Now().UTC(),
		})
	})

	mux.HandleFunc("/payments/sessions", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&in)
		log.Info("checkout session requested", zap.Any("reference", in["reference"]))

		id := "cs_" + uuid.NewString()
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":  id,
			"url": "http://localhost:3001/pay/" + id,
		})
	})

	log.Info("mock downstream listening", zap.String("addr", ":3001"))
	if err := http.ListenAndServe(":3001", mux); err != nil {
		log.Fatal("mock downstream failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
