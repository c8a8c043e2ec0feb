package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		kind string
		want Class
	}{
		{kind: KindNotAllowed, want: ClassFatal},
		{kind: KindServiceNotAllowed, want: ClassFatal},
		{kind: KindNoSpeech, want: ClassTransient},
		{kind: KindAudioCapture, want: ClassTransient},
		{kind: KindNetwork, want: ClassOther},
		{kind: KindAborted, want: ClassOther},
		{kind: "something-new", want: ClassOther},
		{kind: "", want: ClassOther},
	}

	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.kind))
		})
	}
}
