// Command cvsgraph renders the commit graph recorded in a cvsfastimport
// store as a Graphviz DOT file, or directly to PNG.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/emicklei/dot"
	"github.com/goccy/go-graphviz"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/node"
	"github.com/cvsfastimport/cvsfastimport/state"
	"github.com/cvsfastimport/cvsfastimport/version"
)

func main() {
	var (
		storeFile = kingpin.Arg(
			"STORE",
			"cvsfastimport store file to read.",
		).Required().String()
		dotFile = kingpin.Flag(
			"dot",
			"Graphviz DOT file to write.",
		).Short('o').String()
		pngFile = kingpin.Flag(
			"png",
			"PNG file to render, via Graphviz, in addition to --dot.",
		).String()
		manifestBranch = kingpin.Flag(
			"manifest",
			"Print the list of files present on this branch at its current head, instead of graphing.",
		).String()
		debug = kingpin.Flag(
			"debug",
			"Enable debug level logging.",
		).Bool()
	)
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version(version.Print("cvsgraph")).Author("cvsfastimport")
	kingpin.CommandLine.Help = "Renders the commit graph of a cvsfastimport store as Graphviz DOT or PNG.\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	if *debug {
		logger.Level = logrus.DebugLevel
	}
	if *manifestBranch == "" && *dotFile == "" && *pngFile == "" {
		logger.Error("one of --manifest, --dot or --png must be given")
		os.Exit(1)
	}

	f, err := os.Open(*storeFile)
	if err != nil {
		logger.Errorf("error opening store %s: %v", *storeFile, err)
		os.Exit(1)
	}
	defer f.Close()

	st, err := state.Deserialize(f)
	if err != nil {
		logger.Errorf("error reading store %s: %v", *storeFile, err)
		os.Exit(1)
	}

	if *manifestBranch != "" {
		for _, path := range buildManifest(st, *manifestBranch).GetFiles("") {
			fmt.Println(path)
		}
		return
	}

	g := buildGraph(st)

	if *dotFile != "" {
		if err := os.WriteFile(*dotFile, []byte(g.String()), 0644); err != nil {
			logger.Errorf("error writing %s: %v", *dotFile, err)
			os.Exit(1)
		}
	}

	if *pngFile != "" {
		if err := renderPNG(g, *pngFile); err != nil {
			logger.Errorf("error rendering %s: %v", *pngFile, err)
			os.Exit(1)
		}
	}
}

// buildGraph walks every branch's mark chain, in the order each mark was
// appended to it, and connects consecutive marks with an edge labelled with
// the branch name. A mark shared by several branches (content reused across
// them, see spec.md §3) ends up as a single node with an incoming edge from
// each branch's predecessor, the same shape the commits it represents form
// in the actual git history.
func buildGraph(st *state.Manager) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	nodes := make(map[ids.Mark]dot.Node)

	nodeFor := func(mark ids.Mark, ps *state.Patchset) dot.Node {
		if n, ok := nodes[mark]; ok {
			return n
		}
		n := g.Node(fmt.Sprintf("%d\n%s", mark, branchLabel(ps.Branches)))
		nodes[mark] = n
		return n
	}

	branches := st.GetBranches()
	sort.Strings(branches)
	for _, branch := range branches {
		marks := st.GetPatchsetMarksOnBranch(branch)
		var prev dot.Node
		havePrev := false
		for _, mark := range marks {
			ps, err := st.GetPatchsetFromMark(mark)
			if err != nil {
				continue
			}
			n := nodeFor(mark, ps)
			if havePrev {
				g.Edge(prev, n, branch)
			}
			prev, havePrev = n, true
		}
	}

	return g
}

// buildManifest replays every patchset appended to branch, in order, adding
// a file on each revision with content and removing it on each deletion
// (FileRevision.Mark is nil iff the revision is a CVS deletion), leaving a
// tree of whatever is present at the branch's current head.
func buildManifest(st *state.Manager, branch string) *node.Node {
	tree := &node.Node{Name: ""}
	for _, mark := range st.GetPatchsetMarksOnBranch(branch) {
		ps, err := st.GetPatchsetFromMark(mark)
		if err != nil {
			continue
		}
		for _, id := range ps.FileRevisions {
			fr, err := st.GetFileRevisionByID(id)
			if err != nil {
				continue
			}
			if fr.Mark == nil {
				tree.DeleteFile(fr.Key.Path)
			} else {
				tree.AddFile(fr.Key.Path)
			}
		}
	}
	return tree
}

func branchLabel(branches []string) string {
	out := ""
	for i, b := range branches {
		if i > 0 {
			out += ","
		}
		out += b
	}
	return out
}

func renderPNG(g *dot.Graph, path string) error {
	gv := graphviz.New()
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(g.String()))
	if err != nil {
		return fmt.Errorf("parsing dot output: %w", err)
	}
	defer graph.Close()

	return gv.RenderFilename(graph, graphviz.PNG, path)
}
