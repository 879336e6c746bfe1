package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"controller-sizer/internal/orchestrator"
	"controller-sizer/internal/solver"
)

// Stream message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

const writeWait = 10 * time.Second

// StreamMessage is sent to stream clients. Exactly one of the payload fields
// is set, matching Type.
type StreamMessage struct {
	Type       string         `json:"type"`
	Enumerated int64          `json:"enumerated,omitempty"`
	Total      int64          `json:"total,omitempty"`
	Result     *SolveResponse `json:"result,omitempty"`
	Error      *ErrorResponse `json:"error,omitempty"`
	Status     int            `json:"status,omitempty"`
}

type solveDone struct {
	res *orchestrator.SolveResult
	err error
}

// handleSolveStream upgrades to a websocket, reads one SolveRequest and
// streams progress until the result is ready.
func (s *Server) handleSolveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.log.Info("read stream request failed", zap.Error(err))
		s.send(conn, StreamMessage{
			Type:   MessageError,
			Error:  &ErrorResponse{Error: "invalid solve request"},
			Status: http.StatusBadRequest,
		})
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	// The client has nothing more to say; a read error means it went away.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	var enumerated, total atomic.Int64
	onProgress := func(p solver.Progress) {
		total.Store(p.Total)
		for {
			cur := enumerated.Load()
			if p.Enumerated <= cur || enumerated.CompareAndSwap(cur, p.Enumerated) {
				return
			}
		}
	}

	done := make(chan solveDone, 1)
	go func() {
		res, err := s.orch.SolveWithProgress(ctx, req.solverRequest(), onProgress)
		done <- solveDone{res: res, err: err}
	}()

	ticker := time.NewTicker(s.progressInterval)
	defer ticker.Stop()

	var sent int64
	progress := func() bool {
		n := enumerated.Load()
		if n == sent {
			return true
		}
		sent = n
		return s.send(conn, StreamMessage{Type: MessageProgress, Enumerated: n, Total: total.Load()})
	}

	for {
		select {
		case <-ticker.C:
			if !progress() {
				cancel()
				<-done
				return
			}
		case d := <-done:
			if d.err != nil {
				s.logFailure("stream solve failed", d.err)
				resp := errorResponse(d.err)
				status := statusFor(d.err)
				if status == http.StatusInternalServerError {
					resp.Error = http.StatusText(status)
				}
				s.send(conn, StreamMessage{Type: MessageError, Error: &resp, Status: status})
				return
			}
			progress()
			result := newSolveResponse(d.res)
			if s.send(conn, StreamMessage{Type: MessageResult, Result: &result}) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
			}
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg StreamMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Info("stream write failed", zap.String("type", msg.Type), zap.Error(err))
		return false
	}
	return true
}
