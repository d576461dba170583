package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quantbt/internal/types"
)

// SaveResult writes the result JSON plus trade and equity CSV exports to
// the directory and returns the paths written.
func SaveResult(dir string, result *types.BacktestResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	baseName := fmt.Sprintf("backtest_%s", result.RunID)
	jsonPath := filepath.Join(dir, baseName+".json")
	tradesPath := filepath.Join(dir, baseName+"_trades.csv")
	equityPath := filepath.Join(dir, baseName+"_equity.csv")

	if err := WriteResultJSON(jsonPath, result); err != nil {
		return nil, err
	}
	if err := WriteTradesCSV(tradesPath, result.Trades); err != nil {
		return nil, err
	}
	if err := WriteEquityCSV(equityPath, result.EquityCurve); err != nil {
		return nil, err
	}
	return []string{jsonPath, tradesPath, equityPath}, nil
}

// WriteResultJSON writes the full result as indented JSON
func WriteResultJSON(path string, result *types.BacktestResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteTradesCSV exports the trade log to CSV
func WriteTradesCSV(path string, trades []types.Trade) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trades file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "symbol", "action", "quantity", "execution_price", "gross_amount", "commission", "realized_pnl", "reason"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, trade := range trades {
		record := []string{
			trade.Timestamp.Format(time.RFC3339),
			trade.Symbol,
			string(trade.Action),
			fmt.Sprintf("%d", trade.Quantity),
			fmt.Sprintf("%.6f", trade.ExecutionPrice),
			fmt.Sprintf("%.6f", trade.GrossAmount),
			fmt.Sprintf("%.6f", trade.Commission),
			fmt.Sprintf("%.6f", trade.RealizedPnL),
			trade.Reason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteEquityCSV exports the equity curve to CSV
func WriteEquityCSV(path string, curve []types.EquityPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create equity file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "total_value", "cash"}); err != nil {
		return err
	}
	for _, point := range curve {
		record := []string{
			point.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.2f", point.TotalValue),
			fmt.Sprintf("%.2f", point.Cash),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
