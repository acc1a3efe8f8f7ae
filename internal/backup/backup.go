// Package backup takes periodic encrypted snapshots of the SQLite database
// and uploads them to S3-compatible storage. The database keeps the only
// copy of the delivery ledger, so losing it means duplicate reminders after
// a rebuild.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is the slice of the S3 API the manager uses; tests substitute a
// fake.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	Passphrase string
	Interval   time.Duration
}

// Manager snapshots the database on a fixed interval.
type Manager struct {
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether the manager has working credentials.
func (m *Manager) Configured() bool {
	return m.client != nil && m.cfg.Passphrase != ""
}

// Run uploads one snapshot per interval until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	if !m.Configured() {
		m.logger.Info("backups disabled")
		return
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Backup(ctx); err != nil {
				m.logger.Error("backup failed", "error", err)
			}
		}
	}
}

// Backup snapshots the live database with VACUUM INTO (a consistent copy
// even mid-write), encrypts it, and uploads it.
func (m *Manager) Backup(ctx context.Context) error {
	if !m.Configured() {
		return fmt.Errorf("backup not configured")
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("keepsake-snapshot-%d.db", m.now().UnixNano()))
	defer os.Remove(tmpPath)

	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", tmpPath); err != nil {
		return fmt.Errorf("snapshot db: %w", err)
	}

	snapshot, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	sealed, err := Encrypt(snapshot, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("keepsake-%s.db.enc", m.now().UTC().Format("20060102-150405"))
	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	}); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return nil
}
