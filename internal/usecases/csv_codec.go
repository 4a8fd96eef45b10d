package usecases

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
)

// Fixed column layouts. Row 1 and row 3 of every exported file must match
// these literally; imports that do not are rejected outright.
var (
	csvScalarHeader   = []string{"Name", "Chain id", "User address", "Scheduled at", "Interval in seconds", "Number of transfers"}
	csvTransferHeader = []string{"Amount", "Destination", "Asset id", "Asset symbol", "Asset decimals", "Asset address", "Asset chain id"}
)

// CsvCodec serializes a payment template to a tabular text format and back.
// The round trip is lossless: scheduled times are written as unix
// milliseconds and the interval column converts between the canonical
// millisecond unit and the file's seconds.
type CsvCodec struct {
	log *zap.Logger
}

// NewCsvCodec creates a codec logging row-level diagnostics to log.
func NewCsvCodec(log *zap.Logger) *CsvCodec {
	if log == nil {
		log = zap.NewNop()
	}
	return &CsvCodec{log: log}
}

// ExportFilename returns the conventional download name for a template.
func ExportFilename(t *entities.PaymentTemplate) string {
	return fmt.Sprintf("%s-%d.csv", t.Name, t.ID)
}

// Encode renders the template as CSV text.
func (c *CsvCodec) Encode(t *entities.PaymentTemplate) (string, error) {
	if len(t.Transfers) == 0 {
		return "", domainerrors.ErrEmptyBatch
	}

	scheduledAt := ""
	if t.ScheduledAt.Valid {
		scheduledAt = strconv.FormatInt(t.ScheduledAt.Time.UnixMilli(), 10)
	}
	interval := ""
	if t.RecurringInterval.Valid {
		interval = strconv.FormatInt(t.RecurringInterval.Int64/1000, 10)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	records := [][]string{
		csvScalarHeader,
		{
			t.Name,
			strconv.FormatUint(t.Transfers[0].Asset.ChainID, 10),
			t.User.EthereumAddress,
			scheduledAt,
			interval,
			strconv.Itoa(len(t.Transfers)),
		},
		csvTransferHeader,
	}
	for _, tr := range t.Transfers {
		records = append(records, []string{
			tr.Amount,
			tr.DestinationUserAddress,
			strconv.FormatUint(uint64(tr.Asset.ID), 10),
			string(tr.Asset.Symbol),
			strconv.Itoa(int(tr.Asset.Decimals)),
			tr.Asset.ContractAddress,
			strconv.FormatUint(tr.Asset.ChainID, 10),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	w.Flush()
	return sb.String(), nil
}

// Decode parses CSV text back into a template. Structural problems (wrong
// headers, scalar row shape, transfer count) abort the import; an
// individual transfer row with the wrong column count is dropped with a
// logged diagnostic instead.
func (c *CsvCodec) Decode(text string) (*entities.PaymentTemplate, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrMalformedHeader, err)
	}

	if len(rows) < 1 || !equalRow(rows[0], csvScalarHeader) {
		return nil, domainerrors.ErrMalformedHeader
	}
	if len(rows) < 2 || len(rows[1]) != len(csvScalarHeader) {
		return nil, domainerrors.ErrMalformedScalarRow
	}
	if len(rows) < 3 || !equalRow(rows[2], csvTransferHeader) {
		return nil, domainerrors.ErrMalformedTransferHeader
	}

	scalar := rows[1]
	declared, err := strconv.Atoi(scalar[5])
	if err != nil {
		return nil, fmt.Errorf("%w: transfer count %q", domainerrors.ErrMalformedScalarRow, scalar[5])
	}
	transferRows := rows[3:]
	if declared != len(transferRows) {
		return nil, fmt.Errorf("%w: declared %d, found %d", domainerrors.ErrRowCountMismatch, declared, len(transferRows))
	}

	t := &entities.PaymentTemplate{
		Name: scalar[0],
		User: entities.User{EthereumAddress: scalar[2]},
	}
	if scalar[3] != "" {
		millis, err := strconv.ParseInt(scalar[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: scheduled at %q", domainerrors.ErrMalformedScalarRow, scalar[3])
		}
		t.ScheduledAt = null.TimeFrom(time.UnixMilli(millis).UTC())
	}
	if scalar[4] != "" {
		seconds, err := strconv.ParseInt(scalar[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: interval %q", domainerrors.ErrMalformedScalarRow, scalar[4])
		}
		t.RecurringInterval = null.Int64From(seconds * 1000)
	}

	for i, row := range transferRows {
		transfer, err := c.decodeTransferRow(row)
		if err != nil {
			c.log.Warn("skipping malformed transfer row",
				zap.Int("row", i+4),
				zap.Error(err),
			)
			continue
		}
		t.Transfers = append(t.Transfers, transfer)
	}
	return t, nil
}

func (c *CsvCodec) decodeTransferRow(row []string) (entities.Transfer, error) {
	if len(row) != len(csvTransferHeader) {
		return entities.Transfer{}, fmt.Errorf("expected %d columns, got %d", len(csvTransferHeader), len(row))
	}
	assetID, err := strconv.ParseUint(row[2], 10, 64)
	if err != nil {
		return entities.Transfer{}, fmt.Errorf("asset id %q: %v", row[2], err)
	}
	decimals, err := strconv.ParseUint(row[4], 10, 8)
	if err != nil {
		return entities.Transfer{}, fmt.Errorf("asset decimals %q: %v", row[4], err)
	}
	chainID, err := strconv.ParseUint(row[6], 10, 64)
	if err != nil {
		return entities.Transfer{}, fmt.Errorf("asset chain id %q: %v", row[6], err)
	}
	return entities.Transfer{
		Amount:                 row[0],
		DestinationUserAddress: row[1],
		AssetID:                uint(assetID),
		Asset: entities.Asset{
			ID:              uint(assetID),
			Symbol:          entities.AssetSymbol(row[3]),
			Decimals:        uint8(decimals),
			ContractAddress: row[5],
			ChainID:         chainID,
		},
	}, nil
}

func equalRow(row, want []string) bool {
	if len(row) != len(want) {
		return false
	}
	for i := range row {
		if row[i] != want[i] {
			return false
		}
	}
	return true
}
