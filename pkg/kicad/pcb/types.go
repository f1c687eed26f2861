package pcb

// Board is the part of a KiCad PCB the pad painter needs: which footprints
// sit on it and which net every pad is attached to.
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
}

// Footprint represents a placed component
type Footprint struct {
	Library   string // Library name
	Name      string // Footprint name
	Reference string // Reference designator (e.g., "R1")
	Value     string // Component value
	Pads      []Pad
}

// Pad represents a footprint pad
type Pad struct {
	Number string // Pad number/name, empty for unnamed mechanical pads
	Type   string // Pad type (thru_hole, smd, np_thru_hole, connect)
	Net    string // Connected net name, empty when unconnected
}

// ID returns the footprint's library identifier, "Library:Name".
func (fp *Footprint) ID() string {
	if fp.Library == "" {
		return fp.Name
	}
	return fp.Library + ":" + fp.Name
}

// Mechanical reports whether the pad is an unplated hole, which carries no
// copper and so never corresponds to a schematic pin.
func (p *Pad) Mechanical() bool {
	return p.Type == "np_thru_hole"
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// NetMap provides lookup of net names by number
type NetMap struct {
	byNumber map[int]string
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{byNumber: make(map[int]string, len(nets))}
	for _, net := range nets {
		nm.byNumber[net.Number] = net.Name
	}
	return nm
}

// Name returns the name of net num. Net 0 is KiCad's "no net".
func (nm *NetMap) Name(num int) string {
	if nm == nil || num == 0 {
		return ""
	}
	return nm.byNumber[num]
}

// References returns the reference designator of every footprint, in file
// order and without duplicates.
func (b *Board) References() []string {
	seen := make(map[string]bool, len(b.Footprints))
	var refs []string
	for _, fp := range b.Footprints {
		if fp.Reference == "" || seen[fp.Reference] {
			continue
		}
		seen[fp.Reference] = true
		refs = append(refs, fp.Reference)
	}
	return refs
}

// Footprint returns the first footprint with the given reference.
func (b *Board) Footprint(ref string) (*Footprint, bool) {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == ref {
			return &b.Footprints[i], true
		}
	}
	return nil, false
}

// EachPad calls fn for every named pad on the board, footprint by footprint.
func (b *Board) EachPad(fn func(fp *Footprint, pad *Pad)) {
	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for j := range fp.Pads {
			if fp.Pads[j].Number == "" {
				continue
			}
			fn(fp, &fp.Pads[j])
		}
	}
}
