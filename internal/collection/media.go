package collection

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quizlet-importer/internal/db"
)

func (c *Collection) mediaPath(name string) string {
	return filepath.Join(c.mediaDir, name)
}

func checksum(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// WriteMedia stores data under name in the media directory and returns the
// name it was actually stored as. Writing the same contents under the same
// name again is a no-op, different contents under a taken name are stored as
// "<base>-<first 8 of sha1>.<ext>".
func (tx *Tx) WriteMedia(ctx context.Context, name string, data []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid media name")
	}
	sum := checksum(data)

	taken, exists, err := tx.storedAs(ctx, name, sum)
	if err != nil {
		return "", err
	}
	if taken && !exists {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), sum[:8], ext)
		taken, exists, err = tx.storedAs(ctx, name, sum)
		if err != nil {
			return "", err
		}
		if taken && !exists {
			return "", fmt.Errorf("media name %q is taken by different contents", name)
		}
	}
	if exists {
		return name, nil
	}

	err = writeFileAtomic(tx.c.mediaPath(name), data)
	if err != nil {
		tx.c.tel.ReportBroken(report_tx_write_media, fmt.Errorf("write file: %w", err), name)
		return "", err
	}
	tx.written = append(tx.written, name)

	err = tx.qry.CreateMedia(ctx, db.CreateMediaParams{
		Name:      name,
		Checksum:  sum,
		Size:      int64(len(data)),
		CreatedAt: tx.c.time.Now().Unix(),
	})
	if err != nil {
		tx.c.tel.ReportBroken(report_tx_write_media, fmt.Errorf("create media: %w", err), name)
		return "", err
	}
	return name, nil
}

// storedAs reports whether something is already stored under name (taken),
// and whether that something has the checksum sum (exists).
func (tx *Tx) storedAs(ctx context.Context, name, sum string) (taken, exists bool, err error) {
	row, err := tx.qry.GetMedia(ctx, name)
	if err == nil {
		return true, row.Checksum == sum, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		tx.c.tel.ReportBroken(report_tx_write_media, fmt.Errorf("get media: %w", err), name)
		return false, false, err
	}

	// files put into the media directory by hand have no row
	onDisk, err := os.ReadFile(tx.c.mediaPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if checksum(onDisk) != sum {
		return true, false, nil
	}

	err = tx.qry.CreateMedia(ctx, db.CreateMediaParams{
		Name:      name,
		Checksum:  sum,
		Size:      int64(len(onDisk)),
		CreatedAt: tx.c.time.Now().Unix(),
	})
	if err != nil {
		return false, false, err
	}
	return true, true, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
	}
	return err
}
