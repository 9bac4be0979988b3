package voice

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Outbound directives produced by the turn processor. They render in
// order into the control markup the telephony platform executes.

// Speak reads a line to the caller
type Speak struct {
	Text     string
	Voice    string
	Language string
}

// Listen gathers the caller's next utterance and posts it to Action
type Listen struct {
	Action string
}

// Redirect sends call control to another webhook
type Redirect struct {
	Target string
}

// Hangup ends the call
type Hangup struct{}

// Pause waits the given number of seconds
type Pause struct {
	Length int
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	SpeechModel   string   `xml:"speechModel,attr"`
	Enhanced      bool     `xml:"enhanced,attr"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

// RenderTwiML encodes directives, in order, into the webhook response body
func RenderTwiML(directives []any) (string, error) {
	response := twimlResponse{}
	for _, directive := range directives {
		switch d := directive.(type) {
		case Speak:
			response.Verbs = append(response.Verbs, twimlSay{
				Voice:    d.Voice,
				Language: d.Language,
				Text:     SanitizeForSpeech(d.Text),
			})
		case Listen:
			response.Verbs = append(response.Verbs, twimlGather{
				Input:         "speech",
				Action:        d.Action,
				Method:        "POST",
				SpeechTimeout: "auto",
				SpeechModel:   "phone_call",
				Enhanced:      true,
			})
		case Redirect:
			response.Verbs = append(response.Verbs, twimlRedirect{
				Method: "POST",
				URL:    d.Target,
			})
		case Hangup:
			response.Verbs = append(response.Verbs, twimlHangup{})
		case Pause:
			response.Verbs = append(response.Verbs, twimlPause{Length: d.Length})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return "", err
	}
	if err := encoder.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SanitizeForSpeech strips symbol and pictograph runes the speech engine
// would read aloud as literal words. The ranges cover general symbols
// and dingbats, the private use area, and the emoji planes.
func SanitizeForSpeech(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 0x2011 && r <= 0x27BF:
			continue
		case r >= 0xE000 && r <= 0xF8FF:
			continue
		case r >= 0x1F000 && r <= 0x1FFFF:
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
