package decompile

import (
	"testing"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// referenceMeta reproduces the §4.2.1 formula directly from the spec
// text, independent of resolvedKeys.meta, as the ground truth for
// TestAccountResolutionProperty.
func referenceMeta(i, numStatic, numWritableLUT int, h MessageHeader) (isSigner, isWritable bool) {
	isSigner = i < h.NumRequiredSignatures

	switch {
	case i >= numStatic:
		isWritable = i-numStatic < numWritableLUT
	case i >= h.NumRequiredSignatures:
		isWritable = i-h.NumRequiredSignatures < numStatic-h.NumRequiredSignatures-h.NumReadonlyUnsignedAccounts
	default:
		isWritable = i < h.NumRequiredSignatures-h.NumReadonlySignedAccounts
	}
	return
}

func TestAccountResolutionProperty(t *testing.T) {
	cases := []struct {
		numStatic       int
		numRequiredSigs int
		numROSigned     int
		numROUnsigned   int
		numWritableLUT  int
		numReadonlyLUT  int
	}{
		{numStatic: 5, numRequiredSigs: 2, numROSigned: 1, numROUnsigned: 1, numWritableLUT: 3, numReadonlyLUT: 2},
		{numStatic: 1, numRequiredSigs: 1, numROSigned: 0, numROUnsigned: 0, numWritableLUT: 0, numReadonlyLUT: 0},
		{numStatic: 8, numRequiredSigs: 3, numROSigned: 2, numROUnsigned: 2, numWritableLUT: 0, numReadonlyLUT: 4},
		{numStatic: 10, numRequiredSigs: 4, numROSigned: 1, numROUnsigned: 3, numWritableLUT: 6, numReadonlyLUT: 0},
	}

	for _, tc := range cases {
		h := MessageHeader{
			NumRequiredSignatures:       tc.numRequiredSigs,
			NumReadonlySignedAccounts:   tc.numROSigned,
			NumReadonlyUnsignedAccounts: tc.numROUnsigned,
		}
		total := tc.numStatic + tc.numWritableLUT + tc.numReadonlyLUT
		rk := &resolvedKeys{
			keys:       make([]svmtypes.Address, total),
			header:     h,
			numStatic:  tc.numStatic,
			numWritLUT: tc.numWritableLUT,
		}
		for i := 0; i < total; i++ {
			wantSigner, wantWritable := referenceMeta(i, tc.numStatic, tc.numWritableLUT, h)
			got := rk.meta(i)
			if got.IsSigner != wantSigner {
				t.Errorf("case %+v index %d: IsSigner = %v, want %v", tc, i, got.IsSigner, wantSigner)
			}
			if got.IsWritable != wantWritable {
				t.Errorf("case %+v index %d: IsWritable = %v, want %v", tc, i, got.IsWritable, wantWritable)
			}
		}
	}
}
