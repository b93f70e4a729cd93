package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"

	"github.com/KamdynS/petclinic-genai/agent/core"
)

type exAgent struct{}

func (exAgent) Run(ctx context.Context, sessionID string, input core.Message) (core.Message, error) {
	return core.Message{Role: "assistant", Content: "pong"}, nil
}

func ExampleServer_chat() {
	s := NewServer(exAgent{}, Config{})
	reqBody, _ := json.Marshal(ChatRequest{Message: "ping", SessionID: "demo"})
	req := httptest.NewRequest("POST", "/chatclient", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp ChatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	fmt.Println(w.Code, resp.Message, resp.SessionID)
	// Output:
	// 200 pong demo
}
