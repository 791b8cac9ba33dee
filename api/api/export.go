/* export.go
 * Contains the leaderboard export as an xlsx workbook
 */

package api

import (
	"context"
	"fmt"
	"io"

	"bolao-bot/api/shared"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Ranking"

// ExportLeaderboard writes the current leaderboard to w as an xlsx workbook (admin only)
func (a *API) ExportLeaderboard(ctx context.Context, req *shared.Request, w io.Writer) error {
	if err := requireAdmin(req); err != nil {
		return err
	}
	entries, err := a.Leaderboard(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{{"Position", "Name", "Points", "Rounds"}}
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Position, e.UserName, e.TotalPoints, e.Rounds})
	}
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
