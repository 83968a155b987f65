package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance/internal/attendance"
	"github.com/kozaktomas/attendance/internal/enroll"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Inspect and prepare the attendance workbook",
}

var sheetInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workbook or add a day column without the camera",
	Long: `Prepare the attendance workbook for a day. People are taken from the
directory names under the known faces directory, so no face models are needed.`,
	RunE: runSheetInit,
}

var sheetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the attendance of a day",
	RunE:  runSheetShow,
}

var sheetDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the days recorded in the workbook",
	RunE:  runSheetDates,
}

func init() {
	rootCmd.AddCommand(sheetCmd)
	sheetCmd.AddCommand(sheetInitCmd, sheetShowCmd, sheetDatesCmd)

	sheetInitCmd.Flags().String("date", "", "Day to prepare as YYYY-MM-DD (default today)")
	sheetInitCmd.Flags().Bool("fill-absent", false, "Mark everyone ABSENT in the new day column")

	sheetShowCmd.Flags().String("date", "", "Day to show as YYYY-MM-DD (default today)")
	sheetShowCmd.Flags().Bool("json", false, "Output as JSON")

	sheetDatesCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSheetInit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	day, err := parseDateFlag(cmd, "date")
	if err != nil {
		return err
	}

	samples, err := enroll.Scan(cfg.Enrollment.KnownFacesDir)
	if err != nil {
		return err
	}
	people := enroll.People(samples)
	if len(people) == 0 {
		log.Warnf("no people found in %s", cfg.Enrollment.KnownFacesDir)
	}

	wb := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	res, err := wb.Prepare(people, day, mustGetBool(cmd, "fill-absent"))
	if err != nil {
		return err
	}

	if !res.Created && !res.DateAdded && res.PeopleAdded == 0 {
		fmt.Printf("%s is up to date\n", wb.Path())
		return nil
	}
	printPrepareResult(wb, res)
	return nil
}

func runSheetShow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	day, err := parseDateFlag(cmd, "date")
	if err != nil {
		return err
	}
	date := day.Format(attendance.DateLayout)

	wb := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	entries, err := wb.Day(date)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"date": date, "entries": entries})
	}

	fmt.Printf("Attendance for %s (%s)\n\n", date, wb.Path())
	fmt.Printf("%-30s %-8s %s\n", "NAME", "STATUS", "TIME")
	present := 0
	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = "-"
		}
		if e.Status == attendance.StatusPresent {
			present++
		}
		fmt.Printf("%-30s %-8s %s\n", e.Name, status, e.Time)
	}
	fmt.Printf("\n%d of %d present\n", present, len(entries))
	return nil
}

func runSheetDates(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	wb := attendance.NewWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet)
	dates, err := wb.Dates()
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return json.NewEncoder(os.Stdout).Encode(dates)
	}
	if len(dates) == 0 {
		fmt.Println("No days recorded yet.")
		return nil
	}
	for _, d := range dates {
		fmt.Println(d)
	}
	return nil
}
