package platform

import (
	"testing"

	"github.com/glennmatthews/cot/errors"
	"github.com/stretchr/testify/assert"
)

func TestLookupUnknownReturnsGeneric(t *testing.T) {
	p := Lookup("com.example.nonexistent")
	assert.Equal(t, Generic.Name, p.Name)
}

func TestLookupKnownProductClass(t *testing.T) {
	p := Lookup("com.cisco.csr1000v")
	assert.Equal(t, "Cisco CSR1000V", p.Name)
}

func TestCSR1000VCPUBounds(t *testing.T) {
	_, err := CSR1000V.ValidateCPUCount(0)
	assert.True(t, errors.Is(err, errors.InvalidInput))

	_, err = CSR1000V.ValidateCPUCount(8)
	assert.True(t, errors.Is(err, errors.InvalidInput))

	warning, err := CSR1000V.ValidateCPUCount(3)
	assert.NoError(t, err)
	assert.NotNil(t, warning, "3 CPUs is in-range but not one of {1,2,4}")

	warning, err = CSR1000V.ValidateCPUCount(2)
	assert.NoError(t, err)
	assert.Nil(t, warning)
}

func TestIOSvSingleCPUOnly(t *testing.T) {
	_, err := IOSv.ValidateCPUCount(2)
	assert.True(t, errors.Is(err, errors.InvalidInput))
}

func TestNICNameSequences(t *testing.T) {
	assert.Equal(t, "GigabitEthernet1", CSR1000V.GuessNICName(1))
	assert.Equal(t, "GigabitEthernet2", CSR1000V.GuessNICName(2))
	assert.Equal(t, "MgmtEth0/0/CPU0/0", IOSXRv.GuessNICName(1))
	assert.Equal(t, "GigabitEthernet0/0/0/0", IOSXRv.GuessNICName(2))
	assert.Equal(t, "mgmt0", NXOSv.GuessNICName(1))
	assert.Equal(t, "Ethernet2/1", NXOSv.GuessNICName(2))
}

func TestCSR1000VControllerType(t *testing.T) {
	assert.Equal(t, "scsi", CSR1000V.ControllerTypeForDevice("harddisk"))
	assert.Equal(t, "ide", CSR1000V.ControllerTypeForDevice("cdrom"))
}

func TestValidateNICType(t *testing.T) {
	assert.NoError(t, IOSv.ValidateNICType("E1000"))
	assert.Error(t, IOSv.ValidateNICType("VMXNET3"))
	assert.NoError(t, Generic.ValidateNICType("anything"))
}
