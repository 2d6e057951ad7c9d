// Package vault persists rendered artifacts with a two-phase scheme: a
// reliable staging write first, then a best-effort copy into the synchronized
// vault. The staging write is the durability boundary; a failed vault copy is
// recorded on the outcome, never escalated.
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var ErrStagingWrite = errors.New("could not write to staging area")

const (
	CodeFileLocked = "FILE_LOCKED"
	CodeCopyError  = "COPY_ERROR"
)

// Outcome records exactly what one save attempt achieved. It is immutable
// after construction and returned to the caller verbatim.
type Outcome struct {
	Path       string `json:"path,omitempty"`
	Filename   string `json:"filename"`
	StagedPath string `json:"staged_path,omitempty"`
	Saved      bool   `json:"saved"`
	Skipped    bool   `json:"skipped"`
	ErrorCode  string `json:"error_code,omitempty"`
}

type Store struct {
	staging string
	vault   string

	copyAttempts  int
	copyBaseDelay time.Duration

	// Injection points for tests.
	now      func() time.Time
	copyFile func(src, dst string) error
}

func NewStore(staging, vault string) (*Store, error) {
	for _, dir := range []string{staging, vault} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create vault directory %s: %w", dir, err)
		}
	}
	return &Store{
		staging:       staging,
		vault:         vault,
		copyAttempts:  8,
		copyBaseDelay: 150 * time.Millisecond,
		now:           time.Now,
		copyFile:      copyFileAtomic,
	}, nil
}

// FindExisting reports whether an artifact for the video already exists in
// the vault or staging area. Read-only discovery; nothing is locked.
func (s *Store) FindExisting(videoID string) (string, bool) {
	pattern := "*__" + videoID + ".md"
	for _, dir := range []string{s.vault, s.staging} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err == nil && len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}

// Save writes the document to staging, then mirrors it to the vault.
// An existing artifact with overwrite=false short-circuits to a skipped
// outcome. A staging failure is fatal (ErrStagingWrite); a vault copy
// failure downgrades to Saved=false with an error code on an otherwise
// successful outcome.
func (s *Store) Save(videoID, filename, content string, overwrite bool) (*Outcome, error) {
	if existing, ok := s.FindExisting(videoID); ok && !overwrite {
		slog.Info("artifact already exists, skipping", "video_id", videoID, "path", existing)
		return &Outcome{
			Path:     existing,
			Filename: filepath.Base(existing),
			Skipped:  true,
		}, nil
	}

	stagedPath := filepath.Join(s.staging, filename)
	vaultPath := filepath.Join(s.vault, filename)

	if err := atomicWriteText(stagedPath, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStagingWrite, err)
	}
	slog.Info("artifact staged", "path", stagedPath)

	if err := s.replicate(stagedPath, vaultPath); err != nil {
		code := CodeCopyError
		if isLockError(err) {
			code = CodeFileLocked
		}
		slog.Warn("vault copy failed, artifact remains in staging only",
			"staged_path", stagedPath, "vault_path", vaultPath, "error_code", code, "error", err)
		return &Outcome{
			Filename:   filename,
			StagedPath: stagedPath,
			Saved:      false,
			ErrorCode:  code,
		}, nil
	}

	slog.Info("artifact saved to vault", "path", vaultPath)
	return &Outcome{
		Path:       vaultPath,
		Filename:   filename,
		StagedPath: stagedPath,
		Saved:      true,
	}, nil
}

// replicate copies staging to vault, backing off on transient lock errors
// from sync clients holding the destination.
func (s *Store) replicate(src, dst string) error {
	var lastErr error
	for i := 0; i < s.copyAttempts; i++ {
		err := s.copyFile(src, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) {
			return err
		}
		time.Sleep(s.copyBaseDelay*(1<<i) + time.Duration(i)*20*time.Millisecond)
	}
	return fmt.Errorf("destination stayed locked after %d attempts: %w", s.copyAttempts, lastErr)
}

// Counts reports how many artifacts sit in staging and in the vault.
func (s *Store) Counts() (staged int, vault int, err error) {
	stagedFiles, err := filepath.Glob(filepath.Join(s.staging, "*.md"))
	if err != nil {
		return 0, 0, err
	}
	vaultFiles, err := filepath.Glob(filepath.Join(s.vault, "*.md"))
	if err != nil {
		return 0, 0, err
	}
	return len(stagedFiles), len(vaultFiles), nil
}

func isLockError(err error) bool {
	return errors.Is(err, os.ErrPermission)
}

var (
	unsafeChars   = regexp.MustCompile(`[<>:"/\\|?*\s]+`)
	repeatHyphens = regexp.MustCompile(`-+`)
	reservedNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
		"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
		"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

const maxFilenameLength = 200

// Filename builds the deterministic artifact filename
// <date>__<slug>__<video-id>.md, safe for every filesystem the vault might
// sync to. The date is the publish date when known, else today.
func (s *Store) Filename(title, videoID, datePublished string) string {
	date := s.now().Format("2006-01-02")
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, datePublished); err == nil {
			date = t.Format("2006-01-02")
			break
		}
	}

	slug := strings.ToLower(title)
	slug = unsafeChars.ReplaceAllString(slug, "-")
	slug = repeatHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	maxSlug := maxFilenameLength - len(date) - len(videoID) - len("____.md")
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	if slug == "" {
		slug = "untitled"
	}

	name := fmt.Sprintf("%s__%s__%s.md", date, slug, videoID)
	if _, reserved := reservedNames[strings.ToUpper(strings.TrimSuffix(name, ".md"))]; reserved {
		name = fmt.Sprintf("video__%s__%s.md", slug, videoID)
	}
	return name
}
