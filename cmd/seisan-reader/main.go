// seisan-reader displays the contents of SEISAN waveform files and converts
// them to miniSEED.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/GeoNet/seisan/internal/fdsn"
	"github.com/GeoNet/seisan/internal/mseedconv"
	"github.com/GeoNet/seisan/internal/seisan"
	"github.com/spf13/cobra"
)

var (
	selectQuery string
	selectFile  string
	sampleLimit int
)

var rootCmd = &cobra.Command{
	Use:   "seisan-reader",
	Short: "Display and convert SEISAN waveform files",
	Long: `seisan-reader decodes SEISAN waveform files.

Channels can be limited with an FDSN dataselect style query, e.g.,
  --select 'net=NZ&sta=WEL&cha=HH?&start=2016-03-19T00:00:00'
or a file of dataselect POST lines
  NZ WEL 10 HHZ 2016-03-19T00:00:00 2016-03-20T00:00:00`,
	SilenceUsage: true,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show the file format and a summary of each channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return info(cmd.OutOrStdout(), args[0])
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert FILE MSEED_FILE",
	Short: "Convert the channels to 512 byte miniSEED records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := convert(args[0], args[1])
		if err != nil {
			return err
		}
		log.Printf("wrote %d miniSEED records to %s", n, args[1])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&selectQuery, "select", "", "dataselect query limiting the channels")
	rootCmd.PersistentFlags().StringVar(&selectFile, "select-file", "", "file of dataselect lines limiting the channels")
	infoCmd.Flags().IntVarP(&sampleLimit, "samples", "s", 0, "number of samples to display per channel")

	rootCmd.AddCommand(infoCmd, convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func info(w io.Writer, path string) error {
	sel, err := selector()
	if err != nil {
		return err
	}

	s, err := decodeFile(path, sampleLimit == 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %s, %d channels\n", path, s.Format, len(s.Channels))

	for _, c := range sel.Select(s.Channels) {
		fmt.Fprintln(w, summary(c.ChannelHeader))

		if sampleLimit > 0 {
			n := sampleLimit
			if n > len(c.Samples) {
				n = len(c.Samples)
			}
			fmt.Fprintf(w, "  %s\n", samples(c.Samples[:n]))
		}
	}

	return nil
}

func convert(path, out string) (int, error) {
	sel, err := selector()
	if err != nil {
		return 0, err
	}

	s, err := decodeFile(path, false)
	if err != nil {
		return 0, err
	}

	// records are built in memory so a failed conversion leaves no partial file.
	var b bytes.Buffer

	n, err := mseedconv.Write(&b, sel.Select(s.Channels))
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(out, b.Bytes(), 0644); err != nil { //nolint:gosec
		return 0, err
	}

	return n, nil
}

func decodeFile(path string, headersOnly bool) (seisan.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return seisan.Stream{}, err
	}
	defer f.Close()

	s, err := seisan.Decode(f, headersOnly)
	switch {
	case seisan.IsKind(err, seisan.UnrecognizedFormat):
		return seisan.Stream{}, fmt.Errorf("%s is not a SEISAN file", path)
	case err != nil:
		return seisan.Stream{}, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

func selector() (fdsn.Selector, error) {
	var d []fdsn.DataSelect

	if selectQuery != "" {
		q, err := fdsn.ParseDataSelect(selectQuery)
		if err != nil {
			return fdsn.Selector{}, fmt.Errorf("select: %w", err)
		}
		d = append(d, q)
	}

	if selectFile != "" {
		f, err := os.Open(selectFile)
		if err != nil {
			return fdsn.Selector{}, err
		}
		defer f.Close()

		if err := fdsn.ParseDataSelectPost(f, &d); err != nil {
			return fdsn.Selector{}, fmt.Errorf("select-file: %w", err)
		}
	}

	return fdsn.NewSelector(d...)
}

// summary gives a one line description of h.
func summary(h seisan.ChannelHeader) string {
	return strings.Join([]string{
		h.SrcName(),
		fmt.Sprintf("%g Hz", h.SampleRate),
		fmt.Sprintf("%d samples", h.SampleCount),
		h.StartTime.Format("2006,002,15:04:05.000000"),
		h.EndTime().Format("2006,002,15:04:05.000000"),
	}, ", ")
}

func samples(v []int64) string {
	s := make([]string, len(v))
	for i := range v {
		s[i] = fmt.Sprintf("%d", v[i])
	}
	return strings.Join(s, " ")
}
