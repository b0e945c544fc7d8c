package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuitToken is the out-of-band shutdown signal, sent as a raw datagram.
const QuitToken = "x"

type Kind int

const (
	KindUnrecognized Kind = iota
	KindRun
	KindQuit
)

// ClassifyDatagram decodes one raw datagram. A payload that parses as a
// structured request with a `parameter` field is a Run; otherwise it is
// treated as plain text with exactly one trailing newline stripped and
// compared against the quit token. Anything else is unrecognized and must
// be dropped without a response. JSON without the `parameter` key ({},
// null, unrelated objects) is not a request and is dropped too.
func ClassifyDatagram(buf []byte) (Kind, *RunRequest) {
	var fields struct {
		Parameter                  *[]float64 `json:"parameter"`
		InitialGuess               []float64  `json:"initial_guess"`
		InitialLagrangeMultipliers []float64  `json:"initial_lagrange_multipliers"`
		InitialPenalty             float64    `json:"initial_penalty"`
	}
	if err := json.Unmarshal(buf, &fields); err == nil && fields.Parameter != nil {
		return KindRun, &RunRequest{
			Parameter:                  *fields.Parameter,
			InitialGuess:               fields.InitialGuess,
			InitialLagrangeMultipliers: fields.InitialLagrangeMultipliers,
			InitialPenalty:             fields.InitialPenalty,
		}
	}

	text := buf
	if n := len(text); n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
	}
	if bytes.Equal(text, []byte(QuitToken)) {
		return KindQuit, nil
	}
	return KindUnrecognized, nil
}

// DecodeCommand parses one stream-interface message. Exactly one of the
// envelope fields must be present.
func DecodeCommand(buf []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(buf, &cmd); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	set := 0
	if cmd.Run != nil {
		set++
	}
	if cmd.Ping != nil {
		set++
	}
	if cmd.Kill != nil {
		set++
	}
	if set != 1 {
		return nil, ErrUnrecognizedMessage
	}
	return &cmd, nil
}

func EncodeError(err error) []byte {
	data, _ := json.Marshal(ErrorResponse{Error: err.Error()})
	return data
}

func EncodePong() []byte {
	data, _ := json.Marshal(PongResponse{Pong: 1})
	return data
}

func EncodeAck(msg string) []byte {
	data, _ := json.Marshal(AckResponse{Msg: msg})
	return data
}

func EncodeSolution(rsp *SolutionResponse) []byte {
	data, _ := json.Marshal(rsp)
	return data
}
