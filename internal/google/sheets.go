package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"labreserva/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrRowNotFound: the reservation has no row in the spreadsheet yet.
var ErrRowNotFound = errors.New("reserva row not found")

const reservasSheet = "Reservas"

// SheetsService mirrors reservation snapshots into a spreadsheet the
// lab staff reads. Column A holds the reservation id; the row index
// cache avoids a full column scan per update.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = service.WarmUpCache(ctx)
	}()

	return service, nil
}

// TestConnection reads one cell to verify access before the worker
// starts.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservasSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// GetServiceAccountEmail returns the service account email, shown to
// the operator so they can share the spreadsheet with it.
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the id column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservasSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertReserva updates the reservation's row, appending one when it
// does not exist yet.
func (s *SheetsService) UpsertReserva(ctx context.Context, reserva *models.Reserva) error {
	if reserva == nil {
		return errors.New("reserva is nil")
	}

	rowIdx, err := s.FindReservaRow(ctx, reserva.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.appendReserva(ctx, reserva)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:H%d", reservasSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{Values: [][]interface{}{reservaRowValues(reserva)}}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) appendReserva(ctx context.Context, reserva *models.Reserva) error {
	valueRange := &sheets.ValueRange{Values: [][]interface{}{reservaRowValues(reserva)}}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, reservasSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateReservaStatus rewrites the status and sync-time cells of the
// reservation's row.
func (s *SheetsService) UpdateReservaStatus(ctx context.Context, reservaID int64, status string) error {
	rowIdx, err := s.FindReservaRow(ctx, reservaID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!G%d:H%d", reservasSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status, time.Now().Format("2006-01-02 15:04:05")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// FindReservaRow locates the 1-based row index for a reservation id in
// column A, consulting the cache first.
func (s *SheetsService) FindReservaRow(ctx context.Context, reservaID int64) (int, error) {
	if reservaID == 0 {
		return 0, errors.New("reserva id is required")
	}

	if row, ok := s.getCachedRow(reservaID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservasSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellID(row) == reservaID {
			rowIdx := i + 1
			s.setCachedRow(reservaID, rowIdx)
			return rowIdx, nil
		}
	}
	return 0, ErrRowNotFound
}

func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id
	default:
		return 0
	}
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache drops the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func reservaRowValues(reserva *models.Reserva) []interface{} {
	equipos := "todo el laboratorio"
	if !reserva.EsTodoElLab() {
		parts := make([]string, 0, len(reserva.Equipos))
		for _, id := range reserva.Equipos {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		equipos = strings.Join(parts, ",")
	}

	return []interface{}{
		reserva.ID,
		reserva.IDUsuario,
		reserva.IDUbicacion,
		equipos,
		reserva.FechaInicio,
		reserva.FechaFin,
		reserva.Status,
		time.Now().Format("2006-01-02 15:04:05"),
	}
}
