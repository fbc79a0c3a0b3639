package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/farm-command-bridge/internal/command"
)

// switchRoute maps a fixed URL to a boolean status command.
type switchRoute struct {
	Path    string
	Command string
	Status  bool
	Message string
}

// speedRoute maps a URL with a {value} segment to a speed command.
type speedRoute struct {
	Path    string
	Command string

	// MessagePrefix is followed by the raw path value in the confirmation.
	MessagePrefix string
}

// Device commands understood by the farm gateway.
const (
	cmdSetFanStatus       = "setFanStatus"
	cmdSetGrowLightStatus = "setGrowLightStatus"
	cmdSetPumpStatus      = "setPumpStatus"
	cmdSetFanSpeed        = "setFanSpeed"
	cmdSetPumpSpeed       = "setPumpSpeed"
)

// speedParam is the URL parameter name of speed routes.
const speedParam = "value"

var switchRoutes = []switchRoute{
	{Path: "/stft", Command: cmdSetFanStatus, Status: true, Message: "设置风扇状态为开启"},
	{Path: "/stff", Command: cmdSetFanStatus, Status: false, Message: "设置风扇状态为关闭"},
	{Path: "/stgt", Command: cmdSetGrowLightStatus, Status: true, Message: "设置生长灯状态为开启"},
	{Path: "/stgf", Command: cmdSetGrowLightStatus, Status: false, Message: "设置生长灯状态为关闭"},
	{Path: "/stpt", Command: cmdSetPumpStatus, Status: true, Message: "设置水泵状态为开启"},
	{Path: "/stpf", Command: cmdSetPumpStatus, Status: false, Message: "设置水泵状态为关闭"},
}

var speedRoutes = []speedRoute{
	{Path: "/setFanSpeed/{" + speedParam + "}", Command: cmdSetFanSpeed, MessagePrefix: "设置风扇速度为: "},
	{Path: "/setPumpSpeed/{" + speedParam + "}", Command: cmdSetPumpSpeed, MessagePrefix: "设置水泵速度为: "},
}

// handleSwitch dispatches {"status":<bool>} for a fixed route.
func (s *Server) handleSwitch(route switchRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome := s.dispatcher.Dispatch(r.Context(), command.Command{
			Name:       route.Command,
			Parameters: map[string]any{"status": route.Status},
		})
		s.writeOutcome(w, r, outcome, route.Message)
	}
}

// handleSpeed dispatches {"speed":<value>} with the value taken from the path.
// No range or type check is made; the device decides.
func (s *Server) handleSpeed(route speedRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi matches on RawPath when it is set, leaving the segment escaped.
		raw := chi.URLParam(r, speedParam)
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(raw); err == nil {
				raw = unescaped
			}
		}

		outcome := s.dispatcher.Dispatch(r.Context(), command.Command{
			Name:       route.Command,
			Parameters: map[string]any{"speed": speedValue(raw)},
		})
		s.writeOutcome(w, r, outcome, route.MessagePrefix+raw)
	}
}

// speedValue returns raw as a JSON number when it is a bare number literal
// and as a string otherwise. json.Valid tolerates surrounding whitespace but
// json.Number does not, so both ends must be number bytes.
func speedValue(raw string) any {
	if raw == "" {
		return raw
	}
	first, last := raw[0], raw[len(raw)-1]
	if (first == '-' || isDigit(first)) && isDigit(last) && json.Valid([]byte(raw)) {
		return json.Number(raw)
	}
	return raw
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// writeOutcome renders a dispatch outcome as the facade body, always HTTP 200.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, o command.Outcome, success string) {
	switch o.Kind {
	case command.KindSuccess:
		writeStatus(w, statusSuccess, success)
	case command.KindTimeout:
		writeStatus(w, statusError, messageTimeout)
	case command.KindRemoteError:
		msg := ""
		if o.Err != nil {
			msg = o.Err.Message
		}
		writeStatus(w, statusError, msg)
	case command.KindRejected:
		writeStatus(w, statusError, messageBusy)
	default:
		s.logger.Error("unknown dispatch outcome",
			"kind", o.Kind.String(),
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
		)
		writeStatus(w, statusError, messageInternalError)
	}
}
