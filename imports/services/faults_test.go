package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultInjectorFireConsumesOnce(t *testing.T) {
	f := NewFaultInjector()
	f.Arm(FaultUpload)

	assert.True(t, f.Fire(FaultUpload))
	assert.False(t, f.Fire(FaultUpload), "a fired fault must disarm itself")
}

func TestFaultInjectorArmReplacesPrevious(t *testing.T) {
	f := NewFaultInjector()
	f.Arm(FaultUpload)
	f.Arm(FaultDatabase)

	fault, armed := f.Armed()
	assert.True(t, armed)
	assert.Equal(t, FaultDatabase, fault)
	assert.False(t, f.Fire(FaultUpload))
	assert.True(t, f.Fire(FaultDatabase))
}

func TestFaultInjectorReset(t *testing.T) {
	f := NewFaultInjector()
	f.Arm(FaultMidLogic)
	f.Reset()

	_, armed := f.Armed()
	assert.False(t, armed)
	assert.False(t, f.Fire(FaultMidLogic))
}

func TestFaultInjectorNilNeverFires(t *testing.T) {
	var f *FaultInjector
	assert.False(t, f.Fire(FaultUpload))
}

func TestFaultInjectorConcurrentFireExactlyOne(t *testing.T) {
	f := NewFaultInjector()
	f.Arm(FaultDatabase)

	const workers = 32
	var wg sync.WaitGroup
	fired := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Fire(FaultDatabase) {
				fired <- true
			}
		}()
	}
	wg.Wait()
	close(fired)

	count := 0
	for range fired {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent caller may consume an armed fault")
}

func TestParseFaultRoundTrip(t *testing.T) {
	for _, fault := range []Fault{FaultUpload, FaultMidLogic, FaultDatabase} {
		parsed, ok := ParseFault(fault.String())
		assert.True(t, ok)
		assert.Equal(t, fault, parsed)
	}

	_, ok := ParseFault("bogus")
	assert.False(t, ok)
}
