/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package connection

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// DefaultWindowSize bounds how many connected requests a Connection will
// allow in flight at once. Allen-Bradley gateways commonly cap the number
// of outstanding connected messages well below their unconnected limit;
// seven keeps a Connection from flooding a PLC-5/SLC-class CPU that only
// ever advertises a handful of connected buffers.
const DefaultWindowSize = 7

// slotWindow hands out small integer slot numbers bounded by a fixed
// capacity, backed by a bitset rather than a counting semaphore so Release
// can be called out of order (a connected reply can complete before an
// earlier one times out) without double-booking a slot.
type slotWindow struct {
	mu   sync.Mutex
	bits *bitset.BitSet
	size uint
}

func newSlotWindow(size uint) *slotWindow {
	return &slotWindow{bits: bitset.New(size), size: size}
}

// Acquire reserves the lowest free slot, reporting false if the window is
// full.
func (w *slotWindow) Acquire() (uint, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := uint(0); i < w.size; i++ {
		if !w.bits.Test(i) {
			w.bits.Set(i)
			return i, true
		}
	}
	return 0, false
}

// Release frees a previously acquired slot. Releasing a slot that was not
// held is a no-op.
func (w *slotWindow) Release(slot uint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bits.Clear(slot)
}

// InUse reports how many slots are currently taken.
func (w *slotWindow) InUse() uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bits.Count()
}
