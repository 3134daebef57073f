package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"airpredict/features"
	"airpredict/predict"
)

const (
	formIdleTimeout  = 5 * time.Minute
	formWriteTimeout = 10 * time.Second
	formMaxMessage   = 64 << 10
)

// Form session actions.
const (
	ActionPreview = "preview"
	ActionSubmit  = "submit"
)

// FormMessage is one client edit or submission. Input holds a SurveyInput for
// the satisfaction pipeline and a PriceRequest for the price pipeline.
type FormMessage struct {
	ID       string          `json:"id,omitempty"`
	Pipeline string          `json:"pipeline"`
	Action   string          `json:"action"`
	Input    json.RawMessage `json:"input"`
}

// FormReply answers a FormMessage. Previews carry the encoded row or vector,
// submissions carry the result as well.
type FormReply struct {
	ID       string                 `json:"id,omitempty"`
	Pipeline string                 `json:"pipeline"`
	Action   string                 `json:"action"`
	Row      *features.Row          `json:"row,omitempty"`
	Vector   *features.FlightVector `json:"vector,omitempty"`
	Result   *predict.Result        `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// handleFormSession runs one pipeline call per message, in order, on the
// connection's own goroutine.
func (a *API) handleFormSession(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	requestID := GetRequestID(r.Context())
	logger := a.logger.With(zap.String("request_id", requestID))
	logger.Debug("form session opened")

	conn.SetReadLimit(formMaxMessage)
	for {
		conn.SetReadDeadline(time.Now().Add(formIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("form session closed", zap.Error(err))
			}
			return
		}

		var msg FormMessage
		var reply FormReply
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = FormReply{Error: fmt.Sprintf("decode message: %v", err)}
		} else {
			reply = a.answer(r, msg)
		}

		conn.SetWriteDeadline(time.Now().Add(formWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("form session write failed", zap.Error(err))
			return
		}
	}
}

func (a *API) answer(r *http.Request, msg FormMessage) FormReply {
	reply := FormReply{ID: msg.ID, Pipeline: msg.Pipeline, Action: msg.Action}
	if msg.Action != ActionPreview && msg.Action != ActionSubmit {
		reply.Error = fmt.Sprintf("unknown action %q", msg.Action)
		return reply
	}

	var err error
	switch predict.Kind(msg.Pipeline) {
	case predict.KindSatisfaction:
		err = a.answerSatisfaction(r, msg, &reply)
	case predict.KindPrice:
		err = a.answerPrice(r, msg, &reply)
	default:
		err = fmt.Errorf("unknown pipeline %q", msg.Pipeline)
	}
	if err != nil {
		reply.Error = err.Error()
		if statusFor(err) >= http.StatusInternalServerError {
			a.logger.Error("form prediction failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Error(err))
		}
	}
	return reply
}

func (a *API) answerSatisfaction(r *http.Request, msg FormMessage, reply *FormReply) error {
	var in features.SurveyInput
	if err := json.Unmarshal(msg.Input, &in); err != nil {
		return fmt.Errorf("%w: %v", features.ErrInvalidInput, err)
	}
	if msg.Action == ActionPreview {
		row, err := a.pipelines.Satisfaction.Encode(in)
		if err != nil {
			return err
		}
		reply.Row = &row
		return nil
	}
	resp, err := a.predictSatisfaction(r.Context(), in)
	if err != nil {
		return err
	}
	reply.Row = &resp.Row
	reply.Result = &resp.Result
	return nil
}

func (a *API) answerPrice(r *http.Request, msg FormMessage, reply *FormReply) error {
	var req PriceRequest
	if err := json.Unmarshal(msg.Input, &req); err != nil {
		return fmt.Errorf("%w: %v", features.ErrInvalidInput, err)
	}
	if msg.Action == ActionPreview {
		in, err := req.FlightInput(a.cfg.Location)
		if err != nil {
			return err
		}
		vector, err := a.pipelines.Price.Encode(in)
		if err != nil {
			return err
		}
		reply.Vector = &vector
		return nil
	}
	resp, err := a.predictPrice(r.Context(), req)
	if err != nil {
		return err
	}
	reply.Vector = &resp.Vector
	reply.Result = &resp.Result
	return nil
}
