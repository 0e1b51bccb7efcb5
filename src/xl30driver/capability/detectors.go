package capability

// DetectorType describes one entry in the 5-member detector-type
// catalogue (solid-state, photomultiplier, etc).
type DetectorType struct {
	ID        int
	ShortName string
	LongName  string
}

// DetectorTypeCatalogue is the fixed, device-independent set of detector
// types the microscope's detector catalogue references by index.
var DetectorTypeCatalogue = []DetectorType{
	{ID: 0, ShortName: "SSD", LongName: "Solid State Detector"},
	{ID: 1, ShortName: "PMT", LongName: "Photo Multiplier"},
	{ID: 2, ShortName: "SED", LongName: "Photo Multiplier, grid, 10 kV"},
	{ID: 3, ShortName: "XAIB", LongName: "eXternal Analog Interface Board"},
	{ID: 4, ShortName: "MULTIPLE", LongName: "Multiple, mixed detector id"},
}

// DetectorTypeByID looks up a detector type by its catalogue index.
func DetectorTypeByID(id int) (DetectorType, bool) {
	for _, t := range DetectorTypeCatalogue {
		if t.ID == id {
			return t, true
		}
	}
	return DetectorType{}, false
}

// DetectorDescriptor is one immutable entry in the detector catalogue.
// Type is nil for ids the device never assigns a detector-type index to.
type DetectorDescriptor struct {
	ID        int
	Name      string
	Type      *int
	ShortName string
}

func detType(id int) *int { return &id }

// DetectorCatalogue is the fixed table of detector ids the microscope
// protocol recognizes, taken verbatim from the device's id→descriptor
// mapping. Whether a given id is actually present on a specific microscope
// is tracked separately by DetectorSupport, set only by the optional
// initial probe.
var DetectorCatalogue = []DetectorDescriptor{
	{ID: 0, Name: "No detector connected", Type: nil, ShortName: ""},
	{ID: 1, Name: "Specimen current detector", Type: detType(0), ShortName: "SC"},
	{ID: 2, Name: "Cathode Luminescence", Type: detType(1), ShortName: "CL"},
	{ID: 3, Name: "Secondary Electron 1", Type: detType(2), ShortName: "SE"},
	{ID: 4, Name: "Backscatter Electron", Type: detType(0), ShortName: "BSE"},
	{ID: 5, Name: "Robinson Detector", Type: detType(1), ShortName: "RBS"},
	{ID: 6, Name: "Secondary Electron 2", Type: detType(2), ShortName: "SE2"},
	{ID: 7, Name: "Auxiliary 1", Type: nil, ShortName: ""},
	{ID: 8, Name: "CCD", Type: detType(0), ShortName: "CCD"},
	{ID: 9, Name: "EDX Standard", Type: detType(3), ShortName: "EDX"},
	{ID: 10, Name: "WDX", Type: detType(3), ShortName: "WDX"},
	{ID: 11, Name: "External video", Type: detType(3), ShortName: "EXT"},
	{ID: 12, Name: "Phax PV9900", Type: detType(3), ShortName: "HAX"},
	{ID: 13, Name: "EDX Imaging", Type: detType(3), ShortName: "IMG"},
	{ID: 14, Name: "GW Backscatter Electron 1", Type: detType(0), ShortName: "BS1"},
	{ID: 15, Name: "GW Backscatter Electron 2", Type: detType(0), ShortName: "BS2"},
	{ID: 16, Name: "GW Backscatter Electron 3", Type: detType(0), ShortName: "BS3"},
	{ID: 17, Name: "GW Backscatter Electron 4", Type: detType(0), ShortName: "BS4"},
	{ID: 18, Name: "Econ 3", Type: detType(3), ShortName: "EDX"},
	{ID: 19, Name: "Econ 4", Type: detType(3), ShortName: "EDX"},
	{ID: 20, Name: "EDX Free", Type: detType(3), ShortName: "EDX"},
	{ID: 21, Name: "MCP_1", Type: detType(2), ShortName: "MCP"},
	{ID: 22, Name: "MCP_2", Type: detType(2), ShortName: "MCP_1"},
	{ID: 23, Name: "Channel Electron Det CED", Type: detType(2), ShortName: "CED"},
	{ID: 24, Name: "Electron BackScatter Pattern", Type: detType(2), ShortName: "EBSP"},
	{ID: 25, Name: "Gaseous Secondary Electron", Type: detType(2), ShortName: "GSE"},
	{ID: 26, Name: "Centaurus", Type: detType(1), ShortName: "CEN"},
	{ID: 27, Name: "STEM Transmission Electron", Type: detType(0), ShortName: "TED"},
	{ID: 28, Name: "TLD (SFEG)", Type: detType(0), ShortName: "TLD"},
	{ID: 29, Name: "GBSD (gaseous backscatter)", Type: detType(0), ShortName: "GSE"},
	{ID: 256, Name: "Mixed", Type: detType(4), ShortName: "MIX"},
}

// DetectorByID looks up a catalogue entry by id.
func DetectorByID(id int) (DetectorDescriptor, bool) {
	for _, d := range DetectorCatalogue {
		if d.ID == id {
			return d, true
		}
	}
	return DetectorDescriptor{}, false
}

// DetectorSupport is the mutable parallel bitset recording which catalogue
// ids this particular microscope has confirmed to support, populated only
// by the optional initial-connect detector probe. The catalogue itself
// stays an immutable, device-independent table.
type DetectorSupport struct {
	supported map[int]bool
}

// NewDetectorSupport returns a support set with every catalogue id marked
// unsupported.
func NewDetectorSupport() *DetectorSupport {
	return &DetectorSupport{supported: make(map[int]bool, len(DetectorCatalogue))}
}

// Set records whether id is supported.
func (s *DetectorSupport) Set(id int, supported bool) {
	s.supported[id] = supported
}

// IsSupported reports whether id was marked supported by a prior probe.
// Unprobed ids default to unsupported.
func (s *DetectorSupport) IsSupported(id int) bool {
	return s.supported[id]
}
