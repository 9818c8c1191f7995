package ivr

import "encoding/xml"

// Minimal TwiML vocabulary for the voice prompts this service emits.

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Message string   `xml:",chardata"`
}

type play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type gather struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr"`
	NumDigits int      `xml:"numDigits,attr"`
	Timeout   int      `xml:"timeout,attr"`
	Action    string   `xml:"action,attr"`
	Method    string   `xml:"method,attr"`
}

// render marshals a TwiML document. Marshal failures cannot carry a
// useful spoken message, so they degrade to an empty response.
func render(verbs ...any) string {
	out, err := xml.Marshal(response{Verbs: verbs})
	if err != nil {
		return "<Response></Response>"
	}
	return string(out)
}
