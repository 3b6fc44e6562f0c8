package host

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/fitgram/pkg/models"
)

const webAppDataKey = "WebAppData"

var (
	ErrMissingHash  = errors.New("init data: missing hash")
	ErrHashMismatch = errors.New("init data: hash mismatch")
	ErrExpired      = errors.New("init data: expired")
)

// InitData is the decoded, unverified content of a WebApp init data string
type InitData struct {
	User     *models.TelegramUser
	AuthDate time.Time
	QueryID  string
	Hash     string
}

// ParseInitData decodes raw without checking its signature
func ParseInitData(raw string) (InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, fmt.Errorf("parse init data: %w", err)
	}

	data := InitData{
		QueryID: values.Get("query_id"),
		Hash:    values.Get("hash"),
	}

	if v := values.Get("auth_date"); v != "" {
		unix, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return InitData{}, fmt.Errorf("invalid auth_date: %w", err)
		}
		data.AuthDate = time.Unix(unix, 0)
	}

	if v := values.Get("user"); v != "" {
		var user models.TelegramUser
		if err := json.Unmarshal([]byte(v), &user); err != nil {
			return InitData{}, fmt.Errorf("decode user: %w", err)
		}
		data.User = &user
	}

	return data, nil
}

// SignInitData builds an init data string for user the same way Telegram
// does for Mini Apps, so the API accepts it like a real WebApp session.
func SignInitData(botToken string, user models.TelegramUser, authDate time.Time) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}

	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("user", string(userJSON))
	values.Set("hash", computeHash(values, botToken))

	return values.Encode(), nil
}

// ValidateInitData checks the signature and age of raw and returns its user.
// A zero maxAge disables the age check.
func ValidateInitData(raw, botToken string, maxAge time.Duration, now time.Time) (models.TelegramUser, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return models.TelegramUser{}, fmt.Errorf("parse init data: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return models.TelegramUser{}, ErrMissingHash
	}

	expected := computeHash(values, botToken)
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return models.TelegramUser{}, ErrHashMismatch
	}

	data, err := ParseInitData(raw)
	if err != nil {
		return models.TelegramUser{}, err
	}
	if maxAge > 0 && !data.AuthDate.IsZero() && now.Sub(data.AuthDate) > maxAge {
		return models.TelegramUser{}, ErrExpired
	}
	if data.User == nil {
		return models.TelegramUser{}, errors.New("init data: missing user")
	}

	return *data.User, nil
}

func computeHash(values url.Values, botToken string) string {
	secret := hmacSHA256([]byte(botToken), []byte(webAppDataKey))
	return hex.EncodeToString(hmacSHA256([]byte(dataCheckString(values)), secret))
}

// dataCheckString joins every field except hash as sorted key=value lines
func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	return strings.Join(pairs, "\n")
}

func hmacSHA256(data, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
