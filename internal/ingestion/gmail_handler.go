package ingestion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoAttachment is returned when no matching message carries a supported CV
var ErrNoAttachment = errors.New("no CV attachment found")

// GmailSource fetches CV attachments from a Gmail inbox
type GmailSource struct {
	service *gmail.Service
}

// NewGmailSource authenticates with the given OAuth client credentials. The token is
// cached in tokenPath; when it is missing the user is asked for an authorization code.
func NewGmailSource(ctx context.Context, credentialsPath, tokenPath string) (*GmailSource, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(ctx, config, tokenPath)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailSource{service: srv}, nil
}

// getClient retrieves a token, saves it, then returns the generated client
func getClient(ctx context.Context, config *oauth2.Config, tokFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokFile)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokFile, tok); err != nil {
			log.Printf("Unable to cache oauth token: %v", err)
		}
	}
	return config.Client(ctx, tok), nil
}

// getTokenFromWeb requests a token from the web
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	log.Printf("Saving credential file to: %s", path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchLatestCV returns the first supported attachment of the newest message with the given subject
func (gs *GmailSource) FetchLatestCV(ctx context.Context, subject string) (Upload, error) {
	user := "me"
	query := fmt.Sprintf("subject:%s has:attachment", subject)

	r, err := gs.service.Users.Messages.List(user).Q(query).MaxResults(10).Context(ctx).Do()
	if err != nil {
		return Upload{}, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	if len(r.Messages) == 0 {
		return Upload{}, fmt.Errorf("%w: no messages found with subject: %s", ErrNoAttachment, subject)
	}

	// Gmail lists newest first
	for _, msg := range r.Messages {
		message, err := gs.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			log.Printf("Unable to retrieve message %s: %v", msg.Id, err)
			continue
		}

		for _, part := range attachmentParts(message.Payload) {
			if _, ok := DetectKind(part.MimeType, part.Filename); !ok {
				continue
			}

			attachment, err := gs.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				log.Printf("Unable to retrieve attachment: %v", err)
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				log.Printf("Unable to decode attachment: %v", err)
				continue
			}

			log.Printf("Fetched %s from message from %s", part.Filename, extractSenderName(message))
			return Upload{
				FileName: filepath.Base(part.Filename),
				MimeType: part.MimeType,
				Content:  bytes.NewReader(data),
			}, nil
		}
	}

	return Upload{}, fmt.Errorf("%w: subject %q", ErrNoAttachment, subject)
}

// attachmentParts flattens the MIME tree of a message into its attachment parts
func attachmentParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}
	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, part)
	}
	for _, child := range part.Parts {
		out = append(out, attachmentParts(child)...)
	}
	return out
}

// extractSenderName extracts the sender's name from email headers
func extractSenderName(message *gmail.Message) string {
	if message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// Parse "Name <email@example.com>" format
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				return strings.TrimSpace(from[:idx])
			}
			// If no name, use email prefix
			if idx := strings.Index(from, "@"); idx > 0 {
				return from[:idx]
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
