/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package backups

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/blnkfinance/vault/config"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const defaultBackupDir = "backups"

// BackupManager dumps the vault database with pg_dump and optionally ships the dump to S3.
type BackupManager struct {
	Config   *config.Configuration
	Uploader s3manageriface.UploaderAPI
}

// NewBackupManager builds a manager for cfg. The S3 uploader is only created
// when a bucket is configured.
func NewBackupManager(cfg *config.Configuration) (*BackupManager, error) {
	bm := &BackupManager{Config: cfg}
	if cfg.S3BucketName == "" {
		return bm, nil
	}

	awsConfig := &aws.Config{
		Region:      aws.String(cfg.S3Region),
		Credentials: credentials.NewStaticCredentials(cfg.AwsAccessKeyId, cfg.AwsSecretAccessKey, ""),
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	bm.Uploader = s3manager.NewUploader(sess)
	return bm, nil
}

type pgTarget struct {
	host, port, user, password, name string
}

func parseDSN(dsn string) (pgTarget, error) {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return pgTarget{}, fmt.Errorf("invalid data source dns: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return pgTarget{}, fmt.Errorf("backups need a postgres data source, got %q", parsed.Scheme)
	}

	host, port, err := net.SplitHostPort(parsed.Host)
	if err != nil {
		host, port = parsed.Host, "5432"
	}
	password, _ := parsed.User.Password()
	return pgTarget{
		host:     host,
		port:     port,
		user:     parsed.User.Username(),
		password: password,
		name:     strings.TrimPrefix(parsed.Path, "/"),
	}, nil
}

func (bm *BackupManager) backupRoot() string {
	if bm.Config.BackupDir == "" {
		return defaultBackupDir
	}
	return bm.Config.BackupDir
}

// BackupToDisk writes a pg_dump of the configured database under
// <backup_dir>/<YYYY-MM-DD>/ and returns the dump path.
func (bm *BackupManager) BackupToDisk(ctx context.Context) (string, error) {
	target, err := parseDSN(bm.Config.DataSource.Dns)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("postgres", bm.Config.DataSource.Dns)
	if err != nil {
		return "", fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("failed to ping database: %w", err)
	}

	var dbSize string
	if err := db.QueryRowContext(ctx, "SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&dbSize); err != nil {
		return "", fmt.Errorf("failed to read database size: %w", err)
	}
	logrus.WithField("size", dbSize).Info("starting database backup")

	now := time.Now()
	backupDir := filepath.Join(bm.backupRoot(), now.Format("2006-01-02"))
	if err := os.MkdirAll(backupDir, 0o750); err != nil {
		return "", err
	}
	backupFile := filepath.Join(backupDir, fmt.Sprintf("vault-%s-backup.sql", now.Format("150405")))

	// #nosec G204 arguments come from the operator's own configuration
	cmd := exec.CommandContext(ctx, "pg_dump", "-U", target.user, "-d", target.name, "-f", backupFile)
	cmd.Env = append(os.Environ(),
		"PGHOST="+target.host,
		"PGPORT="+target.port,
		"PGUSER="+target.user,
		"PGPASSWORD="+target.password,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pg_dump failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	logrus.WithField("file", backupFile).Info("backup successful")
	return backupFile, nil
}

// BackupToS3 takes a fresh dump, zips the day's backup directory and uploads it.
func (bm *BackupManager) BackupToS3(ctx context.Context) error {
	backupFile, err := bm.BackupToDisk(ctx)
	if err != nil {
		return fmt.Errorf("failed to backup to disk: %w", err)
	}
	return bm.ZipAndUpload(ctx, filepath.Dir(backupFile))
}

// ZipAndUpload archives dir and uploads the archive to the configured bucket.
// The local archive is removed afterwards.
func (bm *BackupManager) ZipAndUpload(ctx context.Context, dir string) error {
	if bm.Uploader == nil {
		return fmt.Errorf("s3 bucket is not configured")
	}

	zipPath := filepath.Clean(dir) + ".zip"
	if err := zipDir(dir, zipPath); err != nil {
		return fmt.Errorf("failed to zip %s: %w", dir, err)
	}
	defer func() {
		if err := os.Remove(zipPath); err != nil {
			logrus.Error(err)
		}
	}()

	file, err := os.Open(zipPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	key := filepath.Base(zipPath)
	_, err = bm.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bm.Config.S3BucketName),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	logrus.WithField("key", key).Info("backup uploaded to s3")
	return nil
}

func zipDir(srcDir, destZip string) error {
	zipFile, err := os.Create(destZip)
	if err != nil {
		return err
	}
	defer func() { _ = zipFile.Close() }()

	writer := zip.NewWriter(zipFile)

	walkErr := filepath.Walk(srcDir, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, filePath)
		if err != nil {
			return err
		}
		zipFileWriter, err := writer.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		srcFile, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer func() { _ = srcFile.Close() }()

		_, err = io.Copy(zipFileWriter, srcFile)
		return err
	})
	if walkErr != nil {
		_ = writer.Close()
		return walkErr
	}
	return writer.Close()
}
