// Package deviceutil attaches a snapshot of the available execution devices
// to a compilation unit as an IR attribute, and recovers it later for passes
// that reason about device placement.
//
// The snapshot lives under the reserved module attribute "tf.devices": a
// dictionary keyed by each device's fully-qualified name, in inventory order.
// Non-GPU devices (and GPU devices whose description carries no recognizable
// compute capability) map to an empty dictionary; GPU devices with a
// "compute capability: <major>.<minor>" description map to a GpuMetadataAttr.
package deviceutil

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/tfmlir/devicename"
	"github.com/gomlx/tfmlir/ir"
)

// DevicesAttrName is the reserved module attribute under which the device
// snapshot is stored. It is the contract between AttachDevices and the
// readers (ExtractDevices, GpuMetadata) and must not drift.
const DevicesAttrName = "tf.devices"

var (
	// ErrInvalidAttributeType reports a "tf.devices" attribute that is not a
	// dictionary.
	ErrInvalidAttributeType = errors.New("bad 'tf.devices' attribute: not a dictionary")

	// ErrInvalidDeviceName reports a "tf.devices" dictionary key that does
	// not parse as a fully-qualified device name.
	ErrInvalidDeviceName = errors.New("bad device name in 'tf.devices' attribute")
)

// Device is one record of the device inventory: the device's fully-qualified
// name and its free-text description, as reported by the device-management
// subsystem.
type Device struct {
	// Name is the fully-qualified device name, parseable by devicename.Parse.
	Name string

	// Description is free text about the physical device. For GPUs it may
	// carry a "compute capability: <major>.<minor>" token.
	Description string
}

// AttachDevices records the device inventory on the module under the
// "tf.devices" attribute, replacing any previous value. The inventory order
// is preserved.
//
// A nil inventory means "no device information" and is a no-op: the module is
// left untouched, including any previously attached snapshot. An empty
// non-nil inventory attaches an empty dictionary.
//
// A device whose name does not parse, or that repeats an earlier device's
// name, makes AttachDevices fail before the module is mutated.
func AttachDevices(m *ir.Module, devices []Device) error {
	if devices == nil {
		return nil
	}
	dict := make(ir.DictionaryAttr, 0, len(devices))
	seen := make(map[string]bool, len(devices))
	for _, device := range devices {
		parsed, err := devicename.Parse(device.Name)
		if err != nil {
			return errors.WithMessagef(err, "invalid device %q in inventory", device.Name)
		}
		if seen[device.Name] {
			return errors.Errorf("duplicate device %q in inventory", device.Name)
		}
		seen[device.Name] = true

		var metadata ir.Attr = ir.DictionaryAttr{}
		if parsed.HasType && parsed.Type == "GPU" {
			if major, minor, ok := parseComputeCapability(device.Description); ok {
				metadata = &GpuMetadataAttr{CCMajor: major, CCMinor: minor}
			} else {
				klog.V(2).Infof("GPU device %q has no compute capability in its description, attaching empty metadata", device.Name)
			}
		}
		dict = append(dict, ir.NamedAttr{Name: device.Name, Value: metadata})
	}
	m.SetAttr(DevicesAttrName, dict)
	return nil
}

// ExtractDevices reads the device snapshot back off the module, returning the
// parsed device names in the order they were attached.
//
// A module without a "tf.devices" attribute yields an empty result and no
// error. A "tf.devices" attribute that is not a dictionary fails with
// ErrInvalidAttributeType; a dictionary key that does not parse as a device
// name fails with ErrInvalidDeviceName. Validation is fail-fast: the first
// bad key aborts the whole extraction and no partial result is returned.
func ExtractDevices(m *ir.Module) ([]devicename.ParsedName, error) {
	attr := m.Attr(DevicesAttrName)
	if attr == nil {
		return nil, nil
	}
	dict, ok := attr.(ir.DictionaryAttr)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAttributeType, "got a %s attribute", ir.KindOf(attr))
	}
	parsedNames := make([]devicename.ParsedName, 0, len(dict))
	for _, entry := range dict {
		parsed, err := devicename.Parse(entry.Name)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidDeviceName, "key %q: %v", entry.Name, err)
		}
		parsedNames = append(parsedNames, parsed)
	}
	return parsedNames, nil
}

// GpuMetadata returns the GPU metadata attached for the given device, or nil
// if there is none: no "tf.devices" attribute on the module, no entry for the
// device, or an entry without GPU metadata all report nil. It never fails.
//
// The device is looked up under its canonical full-name form, the same form
// AttachDevices uses for dictionary keys.
func GpuMetadata(m *ir.Module, name devicename.ParsedName) *GpuMetadataAttr {
	dict, ok := m.Attr(DevicesAttrName).(ir.DictionaryAttr)
	if !ok {
		return nil
	}
	metadata, ok := dict.Get(name.String()).(*GpuMetadataAttr)
	if !ok {
		return nil
	}
	return metadata
}
