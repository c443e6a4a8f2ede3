package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/0xacademy/academy/api"
	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/internal/security"
)

var (
	listParams  api.ListCoursesParams
	showContent bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Browse, enroll in and manage courses",
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		list, err := c.API().ListCourses(cmd.Context(), listParams)
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "ID\tTITLE\tLEVEL\tPRICE\tINSTRUCTOR")
		for _, course := range list.Courses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", course.ID, course.Title, course.Level, price(&course), instructorName(course.Instructor))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		p := list.Pagination
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d courses)\n", p.Page, p.Pages, p.Total)
		return nil
	},
}

var coursesShowCmd = &cobra.Command{
	Use:   "show <course-id>",
	Short: "Show a course and its lessons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		detail, err := c.API().Course(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		course := detail.Course
		fmt.Fprintf(out, "%s\n%s\n\n", course.Title, security.SanitizeText(course.Description))
		fmt.Fprintf(out, "Price: %s  Level: %s  By: %s\n\n", price(&course), course.Level, instructorName(course.Instructor))
		if !detail.HasFullAccess {
			fmt.Fprintln(out, "Enroll to unlock every lesson.")
		}
		return printLessons(out, course.Lessons)
	},
}

var coursesEnrollCmd = &cobra.Command{
	Use:   "enroll <course-id>",
	Short: "Enroll in a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		e, err := c.API().Enroll(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolled in %s\n", e.CourseID)
		return nil
	},
}

var coursesEnrolledCmd = &cobra.Command{
	Use:   "enrolled",
	Short: "List your enrolled courses with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		progress, err := c.API().Progress(cmd.Context())
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "ID\tTITLE\tPROGRESS")
		for _, p := range progress {
			fmt.Fprintf(w, "%s\t%s\t%d%% (%d/%d)\n", p.CourseID, p.Course.Title, p.ProgressPercentage, p.CompletedLessons, p.TotalLessons)
		}
		return w.Flush()
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <lesson-id>",
	Short: "Mark a lesson as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.API().MarkLessonComplete(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		if res.CourseCompleted {
			fmt.Fprintln(cmd.OutOrStdout(), "Course completed! Your certificate is ready.")
		}
		return nil
	},
}

func printLessons(out io.Writer, lessons []core.Lesson) error {
	w := newTable(out)
	fmt.Fprintln(w, "#\tID\tTITLE\tDURATION\tFREE\tVIDEO")
	for _, l := range lessons {
		duration := "-"
		if l.DurationMinutes != nil {
			duration = core.FormatDuration(*l.DurationMinutes * 60)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%t\n", l.Order, l.ID, l.Title, duration, l.IsFree, l.HasVideo())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !showContent {
		return nil
	}
	for _, l := range lessons {
		if text := security.SanitizeText(l.Content); text != "" {
			fmt.Fprintf(out, "\n## %d. %s\n%s\n", l.Order, l.Title, text)
		}
	}
	return nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func price(c *core.Course) string {
	if c.IsFree() {
		return "Free"
	}
	return core.FormatPrice(*c.PriceUSD)
}

func instructorName(i *core.Instructor) string {
	switch {
	case i == nil:
		return ""
	case i.DisplayName != "":
		return i.DisplayName
	default:
		return core.FormatAddress(i.WalletAddress)
	}
}

func init() {
	coursesListCmd.Flags().IntVar(&listParams.Page, "page", 1, "Page number")
	coursesListCmd.Flags().IntVar(&listParams.Limit, "limit", 12, "Courses per page")
	coursesListCmd.Flags().StringVarP(&listParams.Search, "search", "s", "", "Search titles and descriptions")
	coursesListCmd.Flags().StringVar(&listParams.Category, "category", "", "Filter by category")

	coursesShowCmd.Flags().BoolVar(&showContent, "content", false, "Print lesson text")

	coursesCmd.AddCommand(coursesListCmd, coursesShowCmd, coursesEnrollCmd, coursesEnrolledCmd)
	rootCmd.AddCommand(coursesCmd, completeCmd)
}
