package ingestion

import (
	"testing"

	"google.golang.org/api/gmail/v1"
)

func TestAttachmentParts(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "aGVsbG8="}},
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{Filename: "cv.pdf", MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "a1"}},
				},
			},
			{Filename: "photo.png", MimeType: "image/png", Body: &gmail.MessagePartBody{AttachmentId: "a2"}},
			{Filename: "inline.txt", MimeType: "text/plain", Body: &gmail.MessagePartBody{}},
		},
	}

	parts := attachmentParts(payload)
	if len(parts) != 2 {
		t.Fatalf("Expected 2 attachment parts, got %d", len(parts))
	}
	if parts[0].Filename != "cv.pdf" || parts[1].Filename != "photo.png" {
		t.Errorf("Unexpected attachment order: %s, %s", parts[0].Filename, parts[1].Filename)
	}

	if attachmentParts(nil) != nil {
		t.Error("Expected nil payload to yield no parts")
	}
}

func TestExtractSenderName(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{name: "Name and address", from: "Jane Doe <jane@example.com>", want: "Jane Doe"},
		{name: "Address only", from: "jane@example.com", want: "jane"},
		{name: "Garbage", from: "???", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmail.Message{Payload: &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{{Name: "From", Value: tt.from}},
			}}
			if got := extractSenderName(msg); got != tt.want {
				t.Errorf("extractSenderName() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := extractSenderName(&gmail.Message{}); got != "Unknown" {
		t.Errorf("Expected Unknown for message without payload, got %q", got)
	}
}
