package audio

// Downmix reduces one interleaved frame to a mono sample.
// Channels are averaged with integer division, which truncates toward zero.
func Downmix(frame []int16) int16 {
	switch len(frame) {
	case 0:
		return 0
	case 1:
		return frame[0]
	case 2:
		return int16((int32(frame[0]) + int32(frame[1])) / 2)
	}
	var sum int64
	for _, s := range frame {
		sum += int64(s)
	}
	return int16(sum / int64(len(frame)))
}

// appendDownmixed appends the mono form of interleaved to dst.
// A trailing partial frame is dropped.
func appendDownmixed(dst, interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return append(dst, interleaved...)
	}
	frames := len(interleaved) / channels
	dst = growFor(dst, frames)
	for i := range frames {
		dst = append(dst, Downmix(interleaved[i*channels:(i+1)*channels]))
	}
	return dst
}

// growFor makes sure dst can take n more samples with at most one allocation.
func growFor(dst []int16, n int) []int16 {
	if cap(dst)-len(dst) >= n {
		return dst
	}
	grown := make([]int16, len(dst), 2*cap(dst)+n)
	copy(grown, dst)
	return grown
}
