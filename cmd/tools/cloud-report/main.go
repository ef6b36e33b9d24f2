// Command cloud-report decodes an LVX capture and renders an HTML report of
// the point cloud: range and reflectivity distributions plus a numeric
// summary.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/lvxtool/internal/lvx"
	"github.com/banshee-data/lvxtool/internal/pointcloud"
)

var (
	outPath   = flag.String("o", "cloud-report.html", "Output HTML path")
	rangeBins = flag.Int("range-bins", 50, "Number of bins in the range histogram")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cloud-report [flags] input.lvx")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cloud, err := decodeCloud(input)
	if err != nil {
		log.Fatalf("decode %s: %v", input, err)
	}
	if cloud.Len() == 0 {
		log.Fatalf("no points decoded from %s", input)
	}

	page := components.NewPage()
	page.PageTitle = "Point Cloud Report"
	page.AddCharts(rangeChart(cloud, input))
	if chart := reflectivityChart(cloud); chart != nil {
		page.AddCharts(chart)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create report: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render report: %v", err)
	}

	s := pointcloud.Summarise(cloud)
	log.Printf("report written to %s: %d points, range [%.2f, %.2f] m", *outPath, s.Count, s.Range.Min, s.Range.Max)
}

func decodeCloud(path string) (*pointcloud.Cloud, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := lvx.NewReader(data)
	if _, err := lvx.ParseHeader(r); err != nil {
		return nil, err
	}
	cloud := pointcloud.New(int(r.Remaining() / 8))
	dec := lvx.NewDecoder(r)
	for {
		batch, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cloud.Append(batch.Points...)
	}
	for _, w := range dec.Warnings() {
		log.Printf("warning: %s", w)
	}
	return cloud, nil
}

func rangeChart(cloud *pointcloud.Cloud, input string) *charts.Bar {
	edges, counts := pointcloud.RangeHistogram(cloud, *rangeBins)

	labels := make([]string, len(edges))
	data := make([]opts.BarData, len(counts))
	for i := range edges {
		labels[i] = fmt.Sprintf("%.1f", edges[i])
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Range distribution", Subtitle: fmt.Sprintf("%s, %d points", input, cloud.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "range (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "points"}),
	)
	bar.SetXAxis(labels).AddSeries("points", data)
	return bar
}

func reflectivityChart(cloud *pointcloud.Cloud) *charts.Bar {
	counts := pointcloud.ReflectivityHistogram(cloud)
	if counts == nil {
		return nil
	}

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = fmt.Sprintf("%d", i)
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Reflectivity distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "reflectivity"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "points"}),
	)
	bar.SetXAxis(labels).AddSeries("points", data)
	return bar
}
