package merkle

import (
	"fmt"
	"testing"
)

func BenchmarkMerkleTreeBuild(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Leaves_%d", size), func(b *testing.B) {
			leaves := createTestLeaves(size)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, _ = BuildMerkleTree(leaves)
			}
		})
	}
}

func BenchmarkMerkleProofVerification(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		tree, _ := BuildMerkleTree(createTestLeaves(size))
		proof, _ := tree.GenerateProof(size - 1)

		b.Run(fmt.Sprintf("Leaves_%d", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = VerifyProof(proof, tree.Root)
			}
		})
	}
}
