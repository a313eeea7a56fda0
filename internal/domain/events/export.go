package events

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

// utf8BOM keeps Excel from mangling Arabic text in exported sheets.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"name", "mobile", "email", "idNumber", "nationality",
	"age", "jobRequirementName", "ratePerDay", "registeredAt",
}

// ExportCSV renders the event's ledger as UTF-8 CSV with a BOM. The
// nationality and job-requirement columns are resolved for the given
// locale; timestamps are ISO 8601 in UTC. Quoting follows RFC 4180, so
// delimiters and quotes inside values round-trip.
func (s *RegistrationService) ExportCSV(ctx context.Context, eventULID string, l locale.Locale) ([]byte, error) {
	subscribers, err := s.ListSubscribers(ctx, eventULID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, subscriber := range subscribers {
		nationality := ""
		if subscriber.Nationality != nil {
			nationality = subscriber.Nationality.DisplayName(l)
		}

		jobName := ""
		ratePerDay := ""
		if subscriber.JobRequirement != nil {
			if subscriber.JobRequirement.Job != nil {
				jobName = subscriber.JobRequirement.Job.DisplayName(l)
			}
			ratePerDay = strconv.FormatFloat(subscriber.JobRequirement.RatePerDay, 'f', -1, 64)
		}

		record := []string{
			subscriber.Name,
			subscriber.Mobile,
			subscriber.Email,
			subscriber.IDNumber,
			nationality,
			strconv.Itoa(subscriber.Age),
			jobName,
			ratePerDay,
			subscriber.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
