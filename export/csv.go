// Package export writes the workflow results as CSV files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"

	FullRangeFilename = "prediksi_dari_awal.csv"
	ForecastFilename  = "forecast_output.csv"

	TypeTraining = "Training"
	TypeForecast = "Forecast"
)

var (
	FullRangeHeader = []string{"Tanggal", "Aktual", "Prediksi"}
	ForecastHeader  = []string{"Tanggal", "Nilai", "Tipe"}
)

var ErrLenMismatch = errors.New("columns have different lengths")

// FormatValue writes NaN and infinities as an empty field.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(w io.Writer, header []string, rows func(func([]string) error) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("unable to write csv header, %w", err)
	}
	if err := rows(cw.Write); err != nil {
		return fmt.Errorf("unable to write csv row, %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteFullRange writes actual against predicted values over the whole series.
func WriteFullRange(w io.Writer, t []time.Time, actual, predicted []float64) error {
	if len(actual) != len(t) || len(predicted) != len(t) {
		return fmt.Errorf(
			"time %d, actual %d, predicted %d, %w",
			len(t), len(actual), len(predicted), ErrLenMismatch,
		)
	}
	return writeAll(w, FullRangeHeader, func(write func([]string) error) error {
		for i := range t {
			if err := write([]string{t[i].Format(DateLayout), FormatValue(actual[i]), FormatValue(predicted[i])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteForecast writes the training rows followed by the forecast rows.
func WriteForecast(w io.Writer, trainT []time.Time, trainY []float64, fcT []time.Time, fcY []float64) error {
	if len(trainT) != len(trainY) || len(fcT) != len(fcY) {
		return fmt.Errorf(
			"training %d/%d, forecast %d/%d, %w",
			len(trainT), len(trainY), len(fcT), len(fcY), ErrLenMismatch,
		)
	}
	return writeAll(w, ForecastHeader, func(write func([]string) error) error {
		for i := range trainT {
			if err := write([]string{trainT[i].Format(DateLayout), FormatValue(trainY[i]), TypeTraining}); err != nil {
				return err
			}
		}
		for i := range fcT {
			if err := write([]string{fcT[i].Format(DateLayout), FormatValue(fcY[i]), TypeForecast}); err != nil {
				return err
			}
		}
		return nil
	})
}
