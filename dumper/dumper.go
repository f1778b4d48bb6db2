// Package dumper re-serializes a (possibly ModelModifier/Synthesizer
// transformed) Process Network back into the rich XML dialect Frontend
// consumes, for post-transform debugging and the round-trip law spec.md §8
// requires ("the XML output must round-trip through the frontend back into
// a graph equal to its pre-dump state, modulo Id-suffix counters").
//
// Grounded on original_source/source/frontend/dumper.cpp's walk (a
// visited-process/visited-port pair preventing a signal from being written
// twice, once from each endpoint, and a "parent vs curr_element" distinction
// that places a process's own internal signals inside it but a composite's
// boundary-crossing signals in its *container*) and on inspector/golang/
// emitter.go's ordered strings.Builder section emission.
package dumper

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/viant/afs"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// Dumper renders a Process Network to XML and writes it through afs.Service,
// the same file-I/O collaborator Frontend and Synthesizer use.
type Dumper struct {
	fs afs.Service
}

// New creates a Dumper backed by the local/afs-supported filesystem.
func New() *Dumper {
	return &Dumper{fs: afs.New()}
}

// visited mirrors XmlDumper::visited_processes_/visited_ports_: a signal
// binding is written from whichever endpoint is reached first in the walk,
// and skipped the second time.
type visited struct {
	ports map[ir.Endpoint]bool
}

func newVisited() *visited { return &visited{ports: map[ir.Endpoint]bool{}} }

func (v *visited) seen(e ir.Endpoint) bool {
	if e == nil {
		return true
	}
	return v.ports[e]
}

func (v *visited) mark(e ir.Endpoint) {
	if e != nil {
		v.ports[e] = true
	}
}

// Render builds the XML text reflecting net's current state. Frontend's
// Build treats process_network's own direct children as the root
// composite's content (no wrapping element for the root itself, spec.md
// §4.1's table), so the root's boundary ports and child processes are
// written directly under <process_network>; only composites nested inside
// the root get their own <composite> wrapper. `pointer_to_port` additionally
// names the network's own input/output interface list, mirroring
// original_source's dumper.cpp.
func (d *Dumper) Render(net *ir.ProcessNetwork) (string, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<process_network name=%s>\n", attr(net.Name))

	for _, ep := range net.Inputs {
		writePointerToPort(&b, ep, ir.In)
	}
	for _, ep := range net.Outputs {
		writePointerToPort(&b, ep, ir.Out)
	}

	v := newVisited()
	var pending []string
	for _, p := range net.Root.In {
		pending = append(pending, writeBoundaryPort(&b, net.Root, p, ir.In, v)...)
	}
	for _, p := range net.Root.Out {
		pending = append(pending, writeBoundaryPort(&b, net.Root, p, ir.Out, v)...)
	}
	childSignals, err := writeChildren(&b, net.Root, v)
	if err != nil {
		return "", err
	}
	pending = append(pending, childSignals...)
	for _, s := range pending {
		b.WriteString(s)
	}

	b.WriteString("</process_network>\n")
	return b.String(), nil
}

// Write uploads the rendered XML to path via afs.Service.
func (d *Dumper) Write(ctx context.Context, net *ir.ProcessNetwork, path string) error {
	text, err := d.Render(net)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	if err := d.fs.Upload(ctx, path, os.FileMode(0644), strings.NewReader(text)); err != nil {
		return errs.Wrap(errs.IO, err, "writing dump to %q", path)
	}
	return nil
}

func writePointerToPort(b *strings.Builder, ep ir.Endpoint, dir ir.Direction) {
	p := ir.ResolveLeafPort(ep)
	if p == nil {
		return
	}
	owner := ir.OwnerLeaf(p)
	ownerID := ""
	if owner != nil {
		ownerID = owner.ID()
	}
	fmt.Fprintf(b, "  <pointer_to_port direction=%s pointed_process=%s pointed_port=%s/>\n",
		attr(string(dir)), attr(ownerID), attr(p.Id))
}

// writeComposite emits one <composite> element for c: its own boundary
// ports (queuing any outside-connection signal for the CALLER to place,
// since that signal crosses out of c — dumper.cpp's dumpComposite passing
// its own `parent`, not `curr_element`, to dumpIOSignal), then its children,
// whose own internal signals are placed inside c's element before it closes
// (dumper.cpp passes `curr_element` to dumpLeaf/dumpComposite for nested
// content). Returns the signals that must bubble up past this element.
func writeComposite(b *strings.Builder, c *ir.Composite, v *visited) ([]string, error) {
	fmt.Fprintf(b, "<composite name=%s component_name=%s>\n", attr(c.ID()), attr(c.ID()))

	var bubbleUp []string
	for _, p := range c.In {
		bubbleUp = append(bubbleUp, writeBoundaryPort(b, c, p, ir.In, v)...)
	}
	for _, p := range c.Out {
		bubbleUp = append(bubbleUp, writeBoundaryPort(b, c, p, ir.Out, v)...)
	}

	childSignals, err := writeChildren(b, c, v)
	if err != nil {
		return nil, err
	}
	for _, s := range childSignals {
		b.WriteString(s)
	}

	b.WriteString("</composite>\n")
	return bubbleUp, nil
}

// writeChildren dumps c's child processes (leaves then nested composites, in
// registration order, matching the "ports retain insertion order" guarantee
// spec.md §5 calls out), without writing c's own wrapping element or
// flushing the signals they report — the caller decides where those land
// (inside c's own element, since they are c's internal content).
func writeChildren(b *strings.Builder, c *ir.Composite, v *visited) ([]string, error) {
	var signals []string
	for _, child := range c.Children {
		switch proc := child.(type) {
		case *ir.Leaf:
			sigs, err := writeLeaf(b, proc, v)
			if err != nil {
				return nil, err
			}
			signals = append(signals, sigs...)
		case *ir.Composite:
			sigs, err := writeComposite(b, proc, v)
			if err != nil {
				return nil, err
			}
			signals = append(signals, sigs...)
		case *ir.ParallelComposite:
			sigs, err := writeParallelComposite(b, proc, v)
			if err != nil {
				return nil, err
			}
			signals = append(signals, sigs...)
		}
	}
	return signals, nil
}

// writeParallelComposite dumps a ParallelComposite as a composite carrying
// its replication count and representative-member Id as extra attributes;
// Frontend's input dialect never produces this kind (it is a ModelModifier
// artifact of the hierarchical parallelization pass, modelmodifier/sysc.go), so
// round-tripping it is best-effort documentation rather than the round-trip
// law's target.
func writeParallelComposite(b *strings.Builder, c *ir.ParallelComposite, v *visited) ([]string, error) {
	fmt.Fprintf(b, "<composite name=%s component_name=%s replication=%s contained=%s>\n",
		attr(c.ID()), attr(c.ID()), attr(strconv.Itoa(c.Replication)), attr(c.ContainedID))

	var bubbleUp []string
	for _, p := range c.In {
		bubbleUp = append(bubbleUp, writeBoundaryPort(b, &c.Composite, p, ir.In, v)...)
	}
	for _, p := range c.Out {
		bubbleUp = append(bubbleUp, writeBoundaryPort(b, &c.Composite, p, ir.Out, v)...)
	}

	childSignals, err := writeChildren(b, &c.Composite, v)
	if err != nil {
		return nil, err
	}
	for _, s := range childSignals {
		b.WriteString(s)
	}

	b.WriteString("</composite>\n")
	return bubbleUp, nil
}

// writeBoundaryPort emits one <port> for a composite's own IOPort, naming
// the concrete leaf port it is bound to on the inside (`bound_process`/
// `bound_port`, mirroring dumper.cpp's getConnectedPortInside()). If the
// port also has an outside binding not yet visited, it returns the <signal>
// line for the caller to place in the right scope (DESIGN.md Open Question
// decision 5's IOPort Inside/Peer convention, consumed back by Frontend's
// resolveEndpoint self-reference branch) instead of writing it inline —
// c's own element may still be open when this runs.
func writeBoundaryPort(b *strings.Builder, c *ir.Composite, p *ir.IOPort, dir ir.Direction, v *visited) []string {
	inside := ir.ResolveLeafPort(p.Inside())
	boundProcess, boundPort := "", ""
	if inside != nil {
		boundPort = inside.Id
		if owner := ir.OwnerLeaf(inside); owner != nil {
			boundProcess = owner.ID()
		}
	}
	fmt.Fprintf(b, "  <port name=%s direction=%s bound_process=%s bound_port=%s/>\n",
		attr(p.Id), attr(string(dir)), attr(boundProcess), attr(boundPort))

	if peer := p.Peer(); peer != nil && !v.seen(p) {
		v.mark(p)
		v.mark(peer)
		return []string{signalLine(c.ID(), p.Id, dir, peer)}
	}
	return nil
}

// writeLeaf emits one <leaf_process>: its process_constructor (named from
// leaf.Kind, which already spells the token Frontend's leafKindOf matches),
// the constructor's arguments, and its ports. Returns the <signal> lines for
// ports not already visited from their peer's side, for the caller to place
// as siblings of this leaf_process element (dumper.cpp's dumpSignal is
// linked to the leaf's *container*, not the leaf_process element itself).
func writeLeaf(b *strings.Builder, l *ir.Leaf, v *visited) ([]string, error) {
	fmt.Fprintf(b, "<leaf_process name=%s>\n", attr(l.ID()))
	fmt.Fprintf(b, "  <process_constructor name=%s moc=%s>\n", attr(string(l.Kind)), attr(string(l.MoC())))

	if err := writeConstructorArguments(b, l); err != nil {
		return nil, err
	}
	b.WriteString("  </process_constructor>\n")

	var signals []string
	for _, p := range l.In {
		writePort(b, p, ir.In)
		if peer := p.Peer(); peer != nil && !v.seen(p) {
			v.mark(p)
			v.mark(peer)
			signals = append(signals, signalLine(l.ID(), p.Id, ir.In, peer))
		}
	}
	for _, p := range l.Out {
		writePort(b, p, ir.Out)
		if peer := p.Peer(); peer != nil && !v.seen(p) {
			v.mark(p)
			v.mark(peer)
			signals = append(signals, signalLine(l.ID(), p.Id, ir.Out, peer))
		}
	}

	b.WriteString("</leaf_process>\n")
	return signals, nil
}

func writeConstructorArguments(b *strings.Builder, l *ir.Leaf) error {
	switch l.Kind {
	case ir.Comb, ir.MapLeaf, ir.ZipWithN:
		if len(l.Functions) == 0 {
			return errs.New(errs.IllegalState, "leaf %q (%s) has no function to dump", l.ID(), l.Kind)
		}
		fmt.Fprintf(b, "    <argument value=%s/>\n", attr(functionSource(l.Functions[0])))
	case ir.CoalescedMap, ir.ParallelMap:
		for _, fn := range l.Functions {
			fmt.Fprintf(b, "    <argument value=%s/>\n", attr(functionSource(fn)))
		}
		if l.Kind == ir.ParallelMap {
			fmt.Fprintf(b, "    <argument name=\"replication\" value=%s/>\n", attr(strconv.Itoa(l.Replication)))
		}
	case ir.Delay:
		fmt.Fprintf(b, "    <argument name=\"init_val\" value=%s/>\n", attr(l.InitValue))
	}
	return nil
}

// functionSource prefers the raw signature text captured at parse time
// (ir.FunctionRecord.Signature), so a leaf parsed from real source dumps
// back byte-for-byte; functions synthesized internally (the synthesizer's
// wrapper/kernel FunctionRecords, spec.md §4.4 Steps 4-5) never populate
// Signature, so a declaration is reconstructed from their Params/Body.
func functionSource(fn *ir.FunctionRecord) string {
	if fn.Signature != "" {
		return fn.Signature
	}
	var params []string
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("%s %s", p.Type.String(), p.Name))
	}
	ret := "void"
	if fn.ReturnType != nil {
		ret = fn.ReturnType.String()
	}
	return fmt.Sprintf("%s %s(%s){%s}", ret, fn.Name, strings.Join(params, ", "), fn.Body)
}

func writePort(b *strings.Builder, p *ir.Port, dir ir.Direction) {
	fmt.Fprintf(b, "  <port name=%s direction=%s type=%s/>\n",
		attr(p.Id), attr(string(dir)), attr(p.Type.String()))
}

// signalLine renders one <signal> between the endpoint already walked
// (procID/portID, of direction dir) and peer, resolving peer's owning
// process/Id — the same shape whether peer is a sibling Leaf Port or a
// Composite's self-referencing IOPort (DESIGN.md Open Question decision 5).
// The producing side is always written as source and the consuming side as
// target, so when the walked endpoint is an in-port, peer is the source.
func signalLine(procID, portID string, dir ir.Direction, peer ir.Endpoint) string {
	peerProcID := ""
	if owner := peer.Owner(); owner != nil {
		peerProcID = owner.ID()
	}
	srcProc, srcPort, dstProc, dstPort := procID, portID, peerProcID, peer.EndpointID()
	if dir == ir.In {
		srcProc, srcPort, dstProc, dstPort = dstProc, dstPort, srcProc, srcPort
	}
	return fmt.Sprintf("<signal source=%s source_port=%s target=%s target_port=%s/>\n",
		attr(srcProc), attr(srcPort), attr(dstProc), attr(dstPort))
}

// attr renders a Go string as a double-quoted, XML-escaped attribute value.
func attr(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return `""`
	}
	return `"` + buf.String() + `"`
}
