package whatsapp

import "wanotif/internal/domain"

const messagingProduct = "whatsapp"

type envelope struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Template         *templateBlock `json:"template,omitempty"`
	Text             *textBlock     `json:"text,omitempty"`
}

type templateBlock struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components,omitempty"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textBlock struct {
	Body string `json:"body"`
}

func buildEnvelope(to string, payload domain.MessagePayload) envelope {
	env := envelope{MessagingProduct: messagingProduct, To: to, Type: string(payload.Kind())}
	switch p := payload.(type) {
	case domain.TemplateMessage:
		tb := &templateBlock{Name: p.Name, Language: language{Code: p.LanguageCode}}
		if len(p.BodyParameters) > 0 {
			params := make([]parameter, 0, len(p.BodyParameters))
			for _, v := range p.BodyParameters {
				params = append(params, parameter{Type: "text", Text: v})
			}
			tb.Components = []component{{Type: "body", Parameters: params}}
		}
		env.Template = tb
	case domain.TextMessage:
		env.Text = &textBlock{Body: p.Body}
	}
	return env
}
