package models

// Payload is a Slack-compatible incoming-webhook message.
type Payload struct {
	Channel     string       `json:"channel,omitempty"     yaml:"channel,omitempty"`
	Username    string       `json:"username,omitempty"    yaml:"username,omitempty"`
	Text        string       `json:"text"                  yaml:"text"`
	Attachments []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// Attachment is one visual block of a message.
type Attachment struct {
	Title  string  `json:"title,omitempty"  yaml:"title,omitempty"`
	Text   string  `json:"text,omitempty"   yaml:"text,omitempty"`
	Color  string  `json:"color,omitempty"  yaml:"color,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field is a labelled value inside an attachment. Short hints that the value
// fits side by side with other fields.
type Field struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
	Short bool   `json:"short" yaml:"short"`
}
