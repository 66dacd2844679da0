package deviceutil

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/tfmlir/devicename"
	"github.com/gomlx/tfmlir/ir"
)

const (
	cpu0 = "/job:worker/replica:0/task:0/device:CPU:0"
	gpu0 = "/job:worker/replica:1/task:2/device:GPU:0"
	gpu1 = "/job:worker/replica:1/task:2/device:GPU:1"
)

func TestAttachDevices(t *testing.T) {
	m := ir.NewModule("main")
	require.NoError(t, AttachDevices(m, []Device{
		{Name: cpu0},
		{Name: gpu0, Description: "compute capability: 7.0"},
		{Name: gpu1},
	}))

	dict, ok := m.Attr(DevicesAttrName).(ir.DictionaryAttr)
	require.True(t, ok)
	require.Len(t, dict, 3)

	// CPU device added with an empty metadata.
	meta0, ok := dict.Get(cpu0).(ir.DictionaryAttr)
	require.True(t, ok)
	assert.Empty(t, meta0)

	// GPU device with its compute capability parsed from the description.
	meta1, ok := dict.Get(gpu0).(*GpuMetadataAttr)
	require.True(t, ok)
	assert.Equal(t, int32(7), meta1.CCMajor)
	assert.Equal(t, int32(0), meta1.CCMinor)

	// GPU device with an empty description added with an empty metadata.
	meta2, ok := dict.Get(gpu1).(ir.DictionaryAttr)
	require.True(t, ok)
	assert.Empty(t, meta2)
}

func TestAttachDevices_NilInventory(t *testing.T) {
	m := ir.NewModule("main")
	require.NoError(t, AttachDevices(m, nil))
	require.Nil(t, m.Attr(DevicesAttrName))

	// A nil inventory also leaves a previously attached snapshot alone.
	require.NoError(t, AttachDevices(m, []Device{{Name: cpu0}}))
	require.NoError(t, AttachDevices(m, nil))
	dict, ok := m.Attr(DevicesAttrName).(ir.DictionaryAttr)
	require.True(t, ok)
	require.Len(t, dict, 1)
}

func TestAttachDevices_Replaces(t *testing.T) {
	m := ir.NewModule("main")
	require.NoError(t, AttachDevices(m, []Device{{Name: cpu0}, {Name: gpu0}}))
	require.NoError(t, AttachDevices(m, []Device{{Name: gpu1}}))

	dict, ok := m.Attr(DevicesAttrName).(ir.DictionaryAttr)
	require.True(t, ok)
	require.Len(t, dict, 1)
	assert.Equal(t, gpu1, dict[0].Name)
}

func TestAttachDevices_BadInventory(t *testing.T) {
	m := ir.NewModule("main")
	err := AttachDevices(m, []Device{{Name: cpu0}, {Name: "bad_device"}})
	require.Error(t, err)
	// The module is untouched on failure.
	require.Nil(t, m.Attr(DevicesAttrName))

	err = AttachDevices(m, []Device{{Name: cpu0}, {Name: cpu0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate device")
	require.Nil(t, m.Attr(DevicesAttrName))
}

func TestExtractDevices_NoAttribute(t *testing.T) {
	m := ir.NewModule("main")
	parsedNames, err := ExtractDevices(m)
	require.NoError(t, err)
	assert.Empty(t, parsedNames)
}

func TestExtractDevices_BadAttributeType(t *testing.T) {
	m := ir.NewModule("main")
	m.SetAttr(DevicesAttrName, ir.BoolAttr(false))
	_, err := ExtractDevices(m)
	require.ErrorIs(t, err, ErrInvalidAttributeType)
}

func TestExtractDevices_BadAttributeArraySubtype(t *testing.T) {
	m := ir.NewModule("main")
	m.SetAttr(DevicesAttrName, ir.ArrayAttr{ir.I32Attr(8)})
	_, err := ExtractDevices(m)
	require.ErrorIs(t, err, ErrInvalidAttributeType)
}

func TestExtractDevices_BadDeviceName(t *testing.T) {
	m := ir.NewModule("main")
	m.SetAttr(DevicesAttrName, ir.DictionaryAttr{
		{Name: "bad_device", Value: ir.DictionaryAttr{}},
	})
	_, err := ExtractDevices(m)
	require.ErrorIs(t, err, ErrInvalidDeviceName)
	assert.Contains(t, err.Error(), "bad_device")
}

func TestExtractDevices_ValidDevice(t *testing.T) {
	m := ir.NewModule("main")
	m.SetAttr(DevicesAttrName, ir.DictionaryAttr{
		{Name: "/job:worker/replica:0/task:0/device:CPU:0", Value: ir.DictionaryAttr{}},
	})
	parsedNames, err := ExtractDevices(m)
	require.NoError(t, err)
	require.Len(t, parsedNames, 1)
	assert.Equal(t, "/job:worker/replica:0/task:0/device:CPU:0", parsedNames[0].String())
}

func TestExtractDevices_RoundTrip(t *testing.T) {
	devices := []Device{
		{Name: cpu0},
		{Name: gpu0, Description: "compute capability: 7.0"},
		{Name: gpu1},
	}
	m := ir.NewModule("main")
	require.NoError(t, AttachDevices(m, devices))

	parsedNames, err := ExtractDevices(m)
	require.NoError(t, err)
	require.Len(t, parsedNames, len(devices))
	for i, device := range devices {
		assert.Equal(t, must.M1(devicename.Parse(device.Name)), parsedNames[i])
	}
}

func TestGpuMetadata(t *testing.T) {
	m := ir.NewModule("main")
	m.SetAttr(DevicesAttrName, ir.DictionaryAttr{
		{Name: gpu0, Value: &GpuMetadataAttr{CCMajor: 1, CCMinor: 2}},
	})

	meta0 := GpuMetadata(m, must.M1(devicename.Parse(gpu0)))
	require.NotNil(t, meta0)
	assert.Equal(t, int32(1), meta0.CCMajor)
	assert.Equal(t, int32(2), meta0.CCMinor)

	// A sibling device never attached has no metadata.
	require.Nil(t, GpuMetadata(m, must.M1(devicename.Parse(gpu1))))
}

func TestGpuMetadata_EmptyResults(t *testing.T) {
	parsed := must.M1(devicename.Parse(gpu0))

	// No attribute on the module at all.
	m := ir.NewModule("main")
	require.Nil(t, GpuMetadata(m, parsed))

	// Attribute present but the device's entry is an empty metadata.
	require.NoError(t, AttachDevices(m, []Device{{Name: gpu0}}))
	require.Nil(t, GpuMetadata(m, parsed))

	// Attribute of the wrong shape: still just an empty result.
	m.SetAttr(DevicesAttrName, ir.BoolAttr(true))
	require.Nil(t, GpuMetadata(m, parsed))
}

func BenchmarkAttachDevices(b *testing.B) {
	devices := []Device{
		{Name: cpu0},
		{Name: gpu0, Description: "compute capability: 7.0"},
		{Name: gpu1},
	}
	m := ir.NewModule("main")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := AttachDevices(m, devices); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtractDevices(b *testing.B) {
	m := ir.NewModule("main")
	if err := AttachDevices(m, []Device{
		{Name: cpu0},
		{Name: gpu0, Description: "compute capability: 7.0"},
		{Name: gpu1},
	}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExtractDevices(m); err != nil {
			b.Fatal(err)
		}
	}
}
