package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const photoAttachName = "profile_photo"

// photoUploader sends setBusinessAccountProfilePhoto. go-telegram/bot
// encodes the interface-typed photo field as plain JSON and never writes
// its attachment part, so this one request is built here.
// TODO: switch to bot.SetBusinessAccountProfilePhoto once the library
// uploads InputProfilePhoto attachments.
type photoUploader struct {
	httpClient *http.Client
	endpoint   string
}

type uploadResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (u *photoUploader) upload(ctx context.Context, connectionID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer f.Close()

	media, err := models.InputProfilePhotoStatic{Photo: "attach://" + photoAttachName}.MarshalInputMedia()
	if err != nil {
		return fmt.Errorf("failed to encode photo: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("business_connection_id", connectionID); err != nil {
		return err
	}
	if err := w.WriteField("photo", string(media)); err != nil {
		return err
	}
	part, err := w.CreateFormFile(photoAttachName, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	const method = "setBusinessAccountProfilePhoto"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint+method, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var r uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !r.OK {
		return responseError(method, r)
	}
	return nil
}

// responseError maps a failed response onto the errors go-telegram/bot
// returns for the same codes.
func responseError(method string, r uploadResponse) error {
	switch r.ErrorCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w, %s", bot.ErrorBadRequest, r.Description)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w, %s", bot.ErrorUnauthorized, r.Description)
	case http.StatusForbidden:
		return fmt.Errorf("%w, %s", bot.ErrorForbidden, r.Description)
	case http.StatusNotFound:
		return fmt.Errorf("%w, %s", bot.ErrorNotFound, r.Description)
	case http.StatusTooManyRequests:
		return &bot.TooManyRequestsError{
			Message:    fmt.Sprintf("%s, %s", bot.ErrorTooManyRequests, r.Description),
			RetryAfter: r.Parameters.RetryAfter,
		}
	default:
		return fmt.Errorf("error response from telegram for method %s, %d %s", method, r.ErrorCode, r.Description)
	}
}
