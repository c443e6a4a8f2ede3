package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/0xacademy/academy/core"
	"github.com/0xacademy/academy/service"
)

var courseFlags struct {
	title, description, price, thumbnail, category, level string
	tags                                                  []string
	publish                                               bool
}

var lessonFlags struct {
	title, description, content, video string
	order                              int
	free                               bool
}

var unpublish bool

var coursesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a course you teach",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := core.CourseInput{
			Title:        courseFlags.title,
			Description:  courseFlags.description,
			ThumbnailURL: courseFlags.thumbnail,
			Category:     courseFlags.category,
			Level:        courseFlags.level,
			Tags:         courseFlags.tags,
			IsPublished:  courseFlags.publish,
		}
		if courseFlags.price != "" {
			p, err := decimal.NewFromString(courseFlags.price)
			if err != nil {
				return fmt.Errorf("invalid --price: %w", err)
			}
			in.PriceUSD = &p
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		course, err := c.API().CreateCourse(cmd.Context(), &in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created course %s (%s)\n", course.ID, course.Title)
		return nil
	},
}

var coursesUpdateCmd = &cobra.Command{
	Use:   "update <course-id>",
	Short: "Change the details of a course you teach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := courseUpdate(cmd.Flags())
		if err != nil {
			return err
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		course, err := c.API().UpdateCourse(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated course %s (%s)\n", course.ID, course.Title)
		return nil
	},
}

var coursesPublishCmd = &cobra.Command{
	Use:   "publish <course-id>",
	Short: "Publish a course, or take it down with --unpublish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		course, err := c.API().PublishCourse(cmd.Context(), args[0], !unpublish)
		if err != nil {
			return err
		}
		state := "published"
		if !course.IsPublished {
			state = "unpublished"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Course %s is %s\n", course.ID, state)
		return nil
	},
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List and manage the lessons of a course",
}

var lessonsListCmd = &cobra.Command{
	Use:   "list <course-id>",
	Short: "List the lessons of a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		lessons, err := c.API().Lessons(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printLessons(cmd.OutOrStdout(), lessons)
	},
}

var lessonsCreateCmd = &cobra.Command{
	Use:   "create <course-id>",
	Short: "Add a lesson and upload its video",
	Long: `Add a lesson to a course you teach. The video duration is read from the
file, the lesson is created and the video is uploaded and attached to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := service.OpenVideoFile(lessonFlags.video)
		if err != nil {
			return err
		}
		in := core.LessonInput{
			Title:       lessonFlags.title,
			Description: lessonFlags.description,
			Content:     lessonFlags.content,
			IsFree:      lessonFlags.free,
		}
		if cmd.Flags().Changed("order") {
			in.Order = &lessonFlags.order
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		out := cmd.OutOrStdout()
		lesson, err := c.CreateLesson(cmd.Context(), args[0], in, file, uploadReporting(out, file)...)
		if err != nil {
			if lesson != nil {
				fmt.Fprintf(out, "Lesson %s was created without a video\n", lesson.ID)
			}
			return err
		}
		printLessonSummary(out, "Created", lesson)
		return nil
	},
}

var lessonsUpdateCmd = &cobra.Command{
	Use:   "update <course-id> <lesson-id>",
	Short: "Edit a lesson, optionally replacing its video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := lessonUpdate(cmd.Flags())

		var file *service.VideoFile
		if lessonFlags.video != "" {
			f, err := service.OpenVideoFile(lessonFlags.video)
			if err != nil {
				return err
			}
			file = f
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		out := cmd.OutOrStdout()
		var opts []service.UploadOption
		if file != nil {
			opts = uploadReporting(out, file)
		}
		lesson, err := c.UpdateLesson(cmd.Context(), args[0], args[1], *in, file, opts...)
		if err != nil {
			return err
		}
		printLessonSummary(out, "Updated", lesson)
		return nil
	},
}

// courseUpdate keeps only the flags set on the command line
func courseUpdate(flags *pflag.FlagSet) (*core.CourseUpdate, error) {
	in := &core.CourseUpdate{}
	if flags.Changed("title") {
		in.Title = &courseFlags.title
	}
	if flags.Changed("description") {
		in.Description = &courseFlags.description
	}
	if flags.Changed("thumbnail") {
		in.ThumbnailURL = &courseFlags.thumbnail
	}
	if flags.Changed("category") {
		in.Category = &courseFlags.category
	}
	if flags.Changed("level") {
		in.Level = &courseFlags.level
	}
	if flags.Changed("tag") {
		in.Tags = courseFlags.tags
	}
	if flags.Changed("price") {
		p, err := decimal.NewFromString(courseFlags.price)
		if err != nil {
			return nil, fmt.Errorf("invalid --price: %w", err)
		}
		in.PriceUSD = &p
	}
	return in, nil
}

func lessonUpdate(flags *pflag.FlagSet) *core.LessonUpdate {
	in := &core.LessonUpdate{}
	if flags.Changed("title") {
		in.Title = &lessonFlags.title
	}
	if flags.Changed("description") {
		in.Description = &lessonFlags.description
	}
	if flags.Changed("content") {
		in.Content = &lessonFlags.content
	}
	if flags.Changed("order") {
		in.Order = &lessonFlags.order
	}
	if flags.Changed("free") {
		in.IsFree = &lessonFlags.free
	}
	return in
}

func printLessonSummary(out io.Writer, verb string, l *core.Lesson) {
	fmt.Fprintf(out, "%s lesson %s (%s)\n", verb, l.ID, l.Title)
	if l.HasVideo() {
		fmt.Fprintf(out, "Video %s", l.VideoURL)
		if l.DurationMinutes != nil {
			fmt.Fprintf(out, ", %s", core.FormatDuration(*l.DurationMinutes*60))
		}
		fmt.Fprintln(out)
	}
}

func init() {
	for _, c := range []*cobra.Command{coursesCreateCmd, coursesUpdateCmd} {
		f := c.Flags()
		f.StringVar(&courseFlags.title, "title", "", "Course title")
		f.StringVar(&courseFlags.description, "description", "", "Course description")
		f.StringVar(&courseFlags.price, "price", "", "Price in USD, empty or 0 for free")
		f.StringVar(&courseFlags.thumbnail, "thumbnail", "", "Thumbnail URL")
		f.StringVar(&courseFlags.category, "category", "", "Category")
		f.StringVar(&courseFlags.level, "level", "", "beginner, intermediate or advanced")
		f.StringSliceVar(&courseFlags.tags, "tag", nil, "Tag, repeatable")
	}
	coursesCreateCmd.Flags().BoolVar(&courseFlags.publish, "publish", false, "Publish right away")
	_ = coursesCreateCmd.MarkFlagRequired("title")
	_ = coursesCreateCmd.MarkFlagRequired("description")
	coursesPublishCmd.Flags().BoolVar(&unpublish, "unpublish", false, "Take the course down instead")

	for _, c := range []*cobra.Command{lessonsCreateCmd, lessonsUpdateCmd} {
		f := c.Flags()
		f.StringVar(&lessonFlags.title, "title", "", "Lesson title")
		f.StringVar(&lessonFlags.description, "description", "", "Lesson description")
		f.StringVar(&lessonFlags.content, "content", "", "Lesson text (HTML)")
		f.IntVar(&lessonFlags.order, "order", 0, "Position in the course")
		f.BoolVar(&lessonFlags.free, "free", false, "Free preview lesson")
		f.StringVar(&lessonFlags.video, "video", "", "Video file to upload")
	}
	_ = lessonsCreateCmd.MarkFlagRequired("title")
	_ = lessonsCreateCmd.MarkFlagRequired("video")
	lessonsListCmd.Flags().BoolVar(&showContent, "content", false, "Print lesson text")

	coursesCmd.AddCommand(coursesCreateCmd, coursesUpdateCmd, coursesPublishCmd)
	lessonsCmd.AddCommand(lessonsListCmd, lessonsCreateCmd, lessonsUpdateCmd)
	rootCmd.AddCommand(lessonsCmd)
}
