package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openaccounting/backend/internal/application/payments"
	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/encoding/charmap"
)

// Column names of the German PayPal activity download.
const (
	colDate          = "Datum"
	colTime          = "Uhrzeit"
	colTimeZone      = "Zeitzone"
	colType          = "Typ"
	colCurrency      = "Währung"
	colGross         = "Brutto"
	colFee           = "Gebühr"
	colName          = "Name"
	colSenderEmail   = "Absender E-Mail-Adresse"
	colReceiverEmail = "Empfänger E-Mail-Adresse"
	colTransaction   = "Transaktionscode"
	colNote          = "Hinweis"
	colBalanceEffect = "Auswirkung auf Guthaben"
)

// Row types that never settle and are skipped. PayPal releases withheld
// amounts through a separate row later.
const (
	typeWithholding        = "Allgemeine Einbehaltung"
	typeWithholdingRelease = "Freigabe allgemeiner Einbehaltung"
	typeWithdrawal         = "Allgemeine Abbuchung"
)

// Zone abbreviations PayPal emits that the Go zone database does not
// resolve on its own.
var zoneAliases = map[string]string{
	"CET":  "Europe/Berlin",
	"CEST": "Europe/Berlin",
	"MEZ":  "Europe/Berlin",
	"MESZ": "Europe/Berlin",
}

// PayPalActivityCSVParser parses the German activity download of a
// PayPal business account.
type PayPalActivityCSVParser struct{}

// NewPayPalActivityCSVParser creates a new PayPalActivityCSVParser
func NewPayPalActivityCSVParser() *PayPalActivityCSVParser {
	return &PayPalActivityCSVParser{}
}

// Parse reads the activity CSV and returns normalized payment records
func (p *PayPalActivityCSVParser) Parse(r io.Reader) ([]payments.ParsedPayment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity data: %w", err)
	}
	data = decodeToUTF8(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colDate, colTime, colType, colCurrency, colGross, colTransaction} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("activity data is missing column %q", required)
		}
	}

	var parsed []payments.ParsedPayment
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read activity row: %w", err)
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rowType := field(colType)
		if rowType == typeWithholding || rowType == typeWithholdingRelease {
			continue
		}
		// Memo rows never complete and have no effect on the balance
		if field(colBalanceEffect) == "Memo" {
			continue
		}

		record, err := p.parseRow(field)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, record)
	}

	return parsed, nil
}

func (p *PayPalActivityCSVParser) parseRow(field func(string) string) (payments.ParsedPayment, error) {
	code := field(colTransaction)

	bookedAt, err := parseTimestamp(field(colDate), field(colTime), field(colTimeZone))
	if err != nil {
		return payments.ParsedPayment{}, fmt.Errorf("payment %s: %w", code, err)
	}

	currency := valueobject.Currency(field(colCurrency))
	gross, err := valueobject.NewMoneyFromString(germanDecimal(field(colGross)), currency)
	if err != nil {
		return payments.ParsedPayment{}, fmt.Errorf("payment %s has an invalid gross amount: %w", code, err)
	}
	fee := valueobject.Zero(currency)
	if raw := field(colFee); raw != "" {
		fee, err = valueobject.NewMoneyFromString(germanDecimal(raw), currency)
		if err != nil {
			return payments.ParsedPayment{}, fmt.Errorf("payment %s has an invalid fee: %w", code, err)
		}
	}

	paymentType := booking.PaymentTypeNormal
	if field(colType) == typeWithdrawal {
		paymentType = booking.PaymentTypeWithdrawal
	}

	// For inbound rows and withdrawals the Name column is the sender,
	// otherwise it is the receiver. The remaining party is identified
	// by its e-mail address.
	isInbound := field(colBalanceEffect) == "Haben"
	nameIsSender := isInbound || paymentType == booking.PaymentTypeWithdrawal

	name := field(colName)
	sender := field(colSenderEmail)
	receiver := field(colReceiverEmail)
	if nameIsSender {
		sender = name
	} else {
		receiver = name
	}

	return payments.ParsedPayment{
		Type:            paymentType,
		TransactionCode: code,
		SenderName:      sender,
		ReceiverName:    receiver,
		BookedAt:        bookedAt,
		GrossAmount:     gross,
		FeeAmount:       fee,
		Note:            field(colNote),
	}, nil
}

// parseTimestamp combines the Datum, Uhrzeit and Zeitzone columns
func parseTimestamp(date, clock, zone string) (time.Time, error) {
	loc := time.UTC
	if zone != "" {
		if alias, ok := zoneAliases[zone]; ok {
			zone = alias
		}
		parsed, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown time zone %q", zone)
		}
		loc = parsed
	}

	ts, err := time.ParseInLocation("02.01.2006 15:04:05", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q %q", date, clock)
	}
	return ts, nil
}

// germanDecimal converts "1.234,56" to "1234.56"
func germanDecimal(s string) string {
	parts := strings.Split(s, ",")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, ".", "")
	}
	return strings.Join(parts, ".")
}

// decodeToUTF8 strips a UTF-8 BOM and transcodes Windows-1252 exports
func decodeToUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// Ensure PayPalActivityCSVParser implements ActivityParser
var _ payments.ActivityParser = (*PayPalActivityCSVParser)(nil)
