package echo

// SupportsLayout reports whether the engine can run with the given bus
// widths: the output must be stereo, the input mono or stereo.
func SupportsLayout(inputChannels, outputChannels int) bool {
	if outputChannels != 2 {
		return false
	}
	return inputChannels == 1 || inputChannels == 2
}
