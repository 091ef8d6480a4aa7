// Package export writes normalized products to a spreadsheet and uploads it.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/product"
)

// DefaultObjectName is the artifact name used locally and in the bucket.
const DefaultObjectName = "product_results.xlsx"

const sheet = "Sheet1"

var header = []any{
	"badge",
	"highly_rated",
	"search_term",
	"mrp",
	"review_summary",
	"about_this_item",
	"asin",
	"last_updated",
	"sponsored",
	"review_text",
	"price",
	"bought_recently",
	"detail_url",
	"all_review_url",
	"rating",
	"name",
}

// Uploader is the object store capability used after the file is written.
type Uploader interface {
	Enabled() bool
	Upload(ctx context.Context, key string, body io.Reader) error
}

type XLSX struct {
	dir        string
	objectName string
	uploader   Uploader
	logger     *zap.SugaredLogger
	metrics    *observability.Metrics
}

type Options struct {
	// Dir defaults to the OS temp dir.
	Dir        string
	ObjectName string
	Metrics    *observability.Metrics
}

func NewXLSX(uploader Uploader, logger *zap.SugaredLogger, opts Options) *XLSX {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.TrimSpace(opts.ObjectName)
	if name == "" {
		name = DefaultObjectName
	}
	return &XLSX{
		dir:        dir,
		objectName: name,
		uploader:   uploader,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Path is where the spreadsheet is written.
func (x *XLSX) Path() string {
	return filepath.Join(x.dir, x.objectName)
}

// Dedup drops records repeating an earlier (name, detail_url) pair.
func Dedup(records []product.Record) []product.Record {
	type pair struct{ name, url string }
	seen := make(map[pair]struct{}, len(records))
	out := make([]product.Record, 0, len(records))
	for _, r := range records {
		k := pair{r.Name, r.DetailURL}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Export writes the deduplicated records to Path and uploads the file when
// the uploader is enabled.
func (x *XLSX) Export(ctx context.Context, records []product.Record) error {
	rows := Dedup(records)
	if err := x.write(rows); err != nil {
		x.metrics.ExportUpload("write_error")
		return err
	}
	x.logger.Infow("export_written", "path", x.Path(), "rows", len(rows), "input", len(records))

	if x.uploader == nil || !x.uploader.Enabled() {
		x.metrics.ExportUpload("skipped")
		return nil
	}

	f, err := os.Open(x.Path())
	if err != nil {
		x.metrics.ExportUpload("write_error")
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	if err := x.uploader.Upload(ctx, x.objectName, f); err != nil {
		x.metrics.ExportUpload("upload_error")
		return err
	}
	x.metrics.ExportUpload("ok")
	return nil
}

// write renders to a unique temp file and renames it over Path, so readers
// never observe a partial spreadsheet.
func (x *XLSX) write(rows []product.Record) error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := recordRow(r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	tmp := filepath.Join(x.dir, "."+uuid.NewString()+".xlsx")
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save export: %w", err)
	}
	if err := os.Rename(tmp, x.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move export: %w", err)
	}
	return nil
}

func recordRow(r product.Record) []any {
	return []any{
		r.Badge,
		r.HighlyRated,
		r.SearchTerm,
		r.MRP,
		r.ReviewSummary,
		r.AboutThisItem,
		r.ASIN,
		r.LastUpdated,
		r.Sponsored,
		strings.Join(r.ReviewText, "\n"),
		r.Price,
		r.BoughtRecently,
		r.DetailURL,
		r.AllReviewURL,
		r.Rating,
		r.Name,
	}
}
