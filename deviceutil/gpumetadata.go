package deviceutil

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/gomlx/tfmlir/ir"
)

// GpuMetadataAttr is a custom record attribute holding a GPU's compute
// capability, as recovered from the device description.
type GpuMetadataAttr struct {
	CCMajor int32
	CCMinor int32
}

var _ ir.Attr = (*GpuMetadataAttr)(nil)

// Write writes the attribute in its MLIR-flavored textual form.
func (a *GpuMetadataAttr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "#tf.gpu_device_metadata<cc_major = %d, cc_minor = %d>", a.CCMajor, a.CCMinor)
	return err
}

// computeCapabilityRegexp matches the compute-capability token device
// descriptions carry, e.g. "device: 0, name: Tesla V100, compute capability: 7.0".
var computeCapabilityRegexp = regexp.MustCompile(`compute capability: (\d+)\.(\d+)`)

// parseComputeCapability scans a free-text device description for a
// "compute capability: <major>.<minor>" token. It reports ok=false when the
// description carries no such token (or the numbers overflow an int32).
func parseComputeCapability(description string) (major, minor int32, ok bool) {
	matches := computeCapabilityRegexp.FindStringSubmatch(description)
	if matches == nil {
		return 0, 0, false
	}
	major64, err := strconv.ParseInt(matches[1], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	minor64, err := strconv.ParseInt(matches[2], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return int32(major64), int32(minor64), true
}
