package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/authRules"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/bubblegum"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/compression"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tokenMetadata"
)

const (
	// ErrCodeConcurrentMerkleTree is what the compression program raises for a proof
	// that does not match the tree.
	ErrCodeConcurrentMerkleTree uint32 = 0x1771
	errCodeAccountNotInitialized uint32 = 0xbc4
)

// RegisterMetaplexPrograms installs stand-ins for bubblegum, account compression,
// token-metadata and token-auth-rules.
//
// The bubblegum stand-in keeps every leaf hash of a tree in its tree config account and
// rewrites the tree account after each mutation with a single change log holding the new
// root, so clients can decode the current root the way they would on a real cluster.
func (f *FakeCluster) RegisterMetaplexPrograms() {
	f.RegisterProgram(programs.BubblegumProgramID, bubblegumProgram)
	f.RegisterProgram(programs.AccountCompressionProgramID, compressionProgram)
	f.RegisterProgram(programs.TokenMetadataProgramID, tokenMetadataProgram)
	f.RegisterProgram(programs.TokenAuthRulesProgramID, authRulesProgram)
}

type fakeTreeConfig struct {
	Creator     solana.PublicKey
	Pair        cnft.DepthSizePair
	CanopyDepth uint32
	Sequence    uint64
	Leaves      [][32]byte
}

func (c *fakeTreeConfig) encode() []byte {
	buf := new(bytes.Buffer)
	buf.Write(c.Creator[:])
	var scratch [8]byte
	for _, v := range []uint32{c.Pair.MaxDepth, c.Pair.MaxBufferSize, c.CanopyDepth, uint32(len(c.Leaves))} {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		buf.Write(scratch[:4])
	}
	binary.LittleEndian.PutUint64(scratch[:], c.Sequence)
	buf.Write(scratch[:])
	for _, leaf := range c.Leaves {
		buf.Write(leaf[:])
	}
	return buf.Bytes()
}

func decodeFakeTreeConfig(data []byte) (*fakeTreeConfig, error) {
	dec := bin.NewBinDecoder(data)
	creator, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	c := &fakeTreeConfig{Creator: solana.PublicKeyFromBytes(creator)}
	fields := make([]uint32, 4)
	for i := range fields {
		if fields[i], err = dec.ReadUint32(bin.LE); err != nil {
			return nil, err
		}
	}
	c.Pair = cnft.DepthSizePair{MaxDepth: fields[0], MaxBufferSize: fields[1]}
	c.CanopyDepth = fields[2]
	if c.Sequence, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	c.Leaves = make([][32]byte, fields[3])
	for i := range c.Leaves {
		b, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, err
		}
		copy(c.Leaves[i][:], b)
	}
	return c, nil
}

func (c *fakeTreeConfig) mirror() (*cnft.Tree, error) {
	return cnft.SparseTreeFromLeaves(c.Leaves, c.Pair)
}

func loadTreeConfig(ic *InvocationContext, treeAuthority solana.PublicKey) (*fakeTreeConfig, error) {
	acc := ic.Account(treeAuthority)
	if acc == nil || !acc.Owner.Equals(programs.BubblegumProgramID) {
		return nil, &ProgramError{Code: errCodeAccountNotInitialized, Msg: fmt.Sprintf("tree config %s not initialized", treeAuthority)}
	}
	return decodeFakeTreeConfig(acc.Data)
}

// storeTree persists cfg and rewrites the tree account from it.
func storeTree(ic *InvocationContext, merkleTree, treeAuthority solana.PublicKey, cfg *fakeTreeConfig) error {
	tree, err := cfg.mirror()
	if err != nil {
		return err
	}
	account := cnft.NewConcurrentMerkleTreeAccount(cfg.Pair, cfg.CanopyDepth, treeAuthority, tree.GetCurrentRoot(), cfg.Sequence)
	data, err := cnft.EncodeConcurrentMerkleTreeAccount(account)
	if err != nil {
		return err
	}
	if err := ic.UpdateData(merkleTree, data); err != nil {
		return err
	}
	return ic.UpdateData(treeAuthority, cfg.encode())
}

// checkProof verifies a canopy-trimmed proof against the tree's current root.
func checkProof(cfg *fakeTreeConfig, root, leaf [32]byte, index uint32, proof [][32]byte) error {
	tree, err := cfg.mirror()
	if err != nil {
		return err
	}
	invalid := &ProgramError{Code: ErrCodeConcurrentMerkleTree, Msg: "Invalid root recomputed from proof"}
	if index >= tree.Size() || uint32(len(proof))+cfg.CanopyDepth != cfg.Pair.MaxDepth {
		return invalid
	}
	if root != tree.GetCurrentRoot() {
		return invalid
	}
	full, err := tree.CompleteProof(&cnft.MerkleProof{LeafIndex: index, Siblings: proof})
	if err != nil {
		return invalid
	}
	if !cnft.VerifyProof(root, leaf, index, full) {
		return invalid
	}
	return nil
}

func bubblegumProgram(ic *InvocationContext) error {
	parsed, err := bubblegum.ParseInstruction(ic.Data)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	treeAuthority, err := ic.Key(0)
	if err != nil {
		return err
	}

	switch parsed.Kind {
	case bubblegum.KindCreateTree:
		return bubblegumCreateTree(ic, treeAuthority, parsed.CreateTree)
	case bubblegum.KindMintV1, bubblegum.KindMintToCollectionV1:
		return bubblegumMint(ic, treeAuthority, parsed)
	case bubblegum.KindVerifyCreator:
		return bubblegumVerifyCreator(ic, treeAuthority, parsed)
	default:
		return fmt.Errorf("InvalidInstructionData: unsupported bubblegum instruction %d", parsed.Kind)
	}
}

func bubblegumCreateTree(ic *InvocationContext, treeAuthority solana.PublicKey, args bubblegum.CreateTreeArgs) error {
	merkleTree, err := ic.Key(1)
	if err != nil {
		return err
	}
	payer, err := ic.Key(2)
	if err != nil {
		return err
	}
	creator, err := ic.Key(3)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(creator); err != nil {
		return err
	}
	expected, _, err := bubblegum.FindTreeAuthorityPda(merkleTree)
	if err != nil {
		return err
	}
	if !expected.Equals(treeAuthority) {
		return &ProgramError{Code: 2006, Msg: "tree authority seeds violated"}
	}

	pair := cnft.DepthSizePair{MaxDepth: args.MaxDepth, MaxBufferSize: args.MaxBufferSize}
	if err := pair.Validate(); err != nil {
		return &ProgramError{Code: ErrCodeConcurrentMerkleTree, Msg: err.Error()}
	}
	treeAcc := ic.Account(merkleTree)
	if treeAcc == nil || !treeAcc.Owner.Equals(programs.AccountCompressionProgramID) {
		return &ProgramError{Code: errCodeAccountNotInitialized, Msg: fmt.Sprintf("tree %s not allocated", merkleTree)}
	}
	canopy := -1
	for c := uint32(0); c <= pair.MaxDepth; c++ {
		if cnft.ConcurrentMerkleTreeAccountSize(pair.MaxDepth, pair.MaxBufferSize, c) == len(treeAcc.Data) {
			canopy = int(c)
			break
		}
	}
	if canopy < 0 {
		return &ProgramError{Code: ErrCodeConcurrentMerkleTree, Msg: fmt.Sprintf("tree account size %d fits no canopy", len(treeAcc.Data))}
	}

	cfg := &fakeTreeConfig{Creator: creator, Pair: pair, CanopyDepth: uint32(canopy)}
	if err := ic.CreateWithData(payer, treeAuthority, cfg.encode(), programs.BubblegumProgramID); err != nil {
		return err
	}
	ic.Log("Instruction: CreateTree")
	return storeTree(ic, merkleTree, treeAuthority, cfg)
}

func bubblegumMint(ic *InvocationContext, treeAuthority solana.PublicKey, parsed *bubblegum.ParsedInstruction) error {
	keys := make([]solana.PublicKey, 6)
	for i := range keys {
		k, err := ic.Key(i)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	owner, delegate, merkleTree, treeDelegate := keys[1], keys[2], keys[3], keys[5]

	cfg, err := loadTreeConfig(ic, treeAuthority)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(treeDelegate); err != nil {
		return err
	}
	if !treeDelegate.Equals(cfg.Creator) {
		return &ProgramError{Code: 6017, Msg: "tree delegate does not match"}
	}

	meta := parsed.Metadata
	if parsed.Kind == bubblegum.KindMintToCollectionV1 {
		collectionAuthority, err := ic.Key(8)
		if err != nil {
			return err
		}
		if err := ic.RequireSigner(collectionAuthority); err != nil {
			return err
		}
		if meta.Collection == nil {
			return &ProgramError{Code: 6030, Msg: "collection not found"}
		}
		meta.Collection.Verified = true
	} else if meta.Collection != nil && meta.Collection.Verified {
		return &ProgramError{Code: 6032, Msg: "collection cannot be verified in this instruction"}
	}

	index := uint32(len(cfg.Leaves))
	if uint64(index) >= uint64(1)<<cfg.Pair.MaxDepth {
		return &ProgramError{Code: ErrCodeConcurrentMerkleTree, Msg: "tree is full"}
	}
	leaf, err := cnft.NewLeaf(merkleTree, index, owner, delegate, meta)
	if err != nil {
		return err
	}
	cfg.Leaves = append(cfg.Leaves, leaf.Hash)
	cfg.Sequence++
	ic.Log("Leaf asset ID: %s", leaf.AssetID)
	return storeTree(ic, merkleTree, treeAuthority, cfg)
}

func bubblegumVerifyCreator(ic *InvocationContext, treeAuthority solana.PublicKey, parsed *bubblegum.ParsedInstruction) error {
	keys := make([]solana.PublicKey, 6)
	for i := range keys {
		k, err := ic.Key(i)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	owner, delegate, merkleTree, creator := keys[1], keys[2], keys[3], keys[5]
	if _, err := ic.Key(8); err != nil {
		return err
	}
	if err := ic.RequireSigner(creator); err != nil {
		return err
	}

	cfg, err := loadTreeConfig(ic, treeAuthority)
	if err != nil {
		return err
	}

	assetID, err := cnft.ComputeAssetID(merkleTree, parsed.Index)
	if err != nil {
		return err
	}
	oldLeaf := cnft.HashLeafSchema(assetID, owner, delegate, parsed.Index, parsed.DataHash, parsed.CreatorHash)

	var proof [][32]byte
	for _, meta := range ic.Accounts[9:] {
		proof = append(proof, [32]byte(meta.PublicKey))
	}
	if err := checkProof(cfg, parsed.Root, oldLeaf, parsed.Index, proof); err != nil {
		return err
	}

	meta := parsed.Metadata.Clone()
	if !meta.VerifyCreator(creator) {
		return &ProgramError{Code: 6006, Msg: "creator not found"}
	}
	newLeaf, err := cnft.ComputeLeafHash(assetID, owner, delegate, parsed.Index, meta)
	if err != nil {
		return err
	}
	cfg.Leaves[parsed.Index] = newLeaf
	cfg.Sequence++
	return storeTree(ic, merkleTree, treeAuthority, cfg)
}

func compressionProgram(ic *InvocationContext) error {
	args, err := compression.DecodeVerifyLeafArgs(ic.Data, ic.Accounts)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	merkleTree, err := ic.Key(0)
	if err != nil {
		return err
	}
	treeAcc := ic.Account(merkleTree)
	if treeAcc == nil {
		return &ProgramError{Code: errCodeAccountNotInitialized, Msg: fmt.Sprintf("tree %s not found", merkleTree)}
	}
	account, err := cnft.DecodeConcurrentMerkleTreeAccount(treeAcc.Data)
	if err != nil {
		return &ProgramError{Code: ErrCodeConcurrentMerkleTree, Msg: err.Error()}
	}
	cfg, err := loadTreeConfig(ic, account.Header.Authority)
	if err != nil {
		return err
	}
	return checkProof(cfg, args.Root, args.Leaf, args.LeafIndex, args.Proof)
}

func tokenMetadataProgram(ic *InvocationContext) error {
	if len(ic.Data) == 0 {
		return fmt.Errorf("InvalidInstructionData: empty token metadata instruction")
	}
	switch ic.Data[0] {
	case tokenMetadata.InstructionCreateMetadataAccountV3:
		return metadataCreateV3(ic)
	case tokenMetadata.InstructionCreateMasterEditionV3:
		return metadataCreateMasterEdition(ic)
	case tokenMetadata.InstructionSetCollectionSize:
		return metadataRequire(ic, 1, 0)
	case tokenMetadata.InstructionCreate:
		return metadataCreate(ic)
	case tokenMetadata.InstructionMint:
		return metadataMint(ic)
	case tokenMetadata.InstructionVerify:
		return metadataRequire(ic, 0, 2)
	default:
		return fmt.Errorf("InvalidInstructionData: unsupported token metadata instruction %d", ic.Data[0])
	}
}

// metadataRequire checks that the account at signerIdx signed and that the metadata
// account at metadataIdx exists.
func metadataRequire(ic *InvocationContext, signerIdx, metadataIdx int) error {
	signer, err := ic.Key(signerIdx)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(signer); err != nil {
		return err
	}
	metadata, err := ic.Key(metadataIdx)
	if err != nil {
		return err
	}
	if ic.Account(metadata) == nil {
		return &ProgramError{Code: 0x39, Msg: fmt.Sprintf("metadata %s not found", metadata)}
	}
	return nil
}

func metadataCreateV3(ic *InvocationContext) error {
	metadata, _ := ic.Key(0)
	mint, _ := ic.Key(1)
	mintAuthority, _ := ic.Key(2)
	payer, err := ic.Key(3)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(mintAuthority); err != nil {
		return err
	}
	mintAcc := ic.Account(mint)
	if mintAcc == nil || len(mintAcc.Data) != MintAccountSize {
		return &ProgramError{Code: 0x2a, Msg: fmt.Sprintf("mint %s not initialized", mint)}
	}
	if expected, _, err := tokenMetadata.FindMetadataPda(mint); err != nil || !expected.Equals(metadata) {
		return &ProgramError{Code: 0x5, Msg: "metadata seeds mismatch"}
	}
	return ic.CreateWithData(payer, metadata, ic.Data[1:], programs.TokenMetadataProgramID)
}

func metadataCreateMasterEdition(ic *InvocationContext) error {
	edition, _ := ic.Key(0)
	mint, _ := ic.Key(1)
	mintAuthority, _ := ic.Key(3)
	payer, _ := ic.Key(4)
	metadata, err := ic.Key(5)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(mintAuthority); err != nil {
		return err
	}
	if ic.Account(metadata) == nil {
		return &ProgramError{Code: 0x39, Msg: "metadata not found"}
	}
	if err := ic.CreateWithData(payer, edition, []byte{6}, programs.TokenMetadataProgramID); err != nil {
		return err
	}
	// the edition takes over the mint authority
	mintAcc := ic.Account(mint)
	if mintAcc == nil || len(mintAcc.Data) != MintAccountSize {
		return &ProgramError{Code: 0x2a, Msg: "mint not initialized"}
	}
	copy(mintAcc.Data[4:36], edition[:])
	ic.SetAccount(mint, mintAcc)
	return nil
}

func metadataCreate(ic *InvocationContext) error {
	metadata, _ := ic.Key(0)
	masterEdition, _ := ic.Key(1)
	mint, _ := ic.Key(2)
	authority, _ := ic.Key(3)
	payer, err := ic.Key(4)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(authority); err != nil {
		return err
	}

	if mintAcc := ic.Account(mint); mintAcc == nil || len(mintAcc.Data) == 0 {
		if err := ic.RequireSigner(mint); err != nil {
			return err
		}
		if err := ic.CreateWithData(payer, mint, mintAccountData(authority, 0), solana.TokenProgramID); err != nil {
			return err
		}
	}
	if err := ic.CreateWithData(payer, metadata, ic.Data[1:], programs.TokenMetadataProgramID); err != nil {
		return err
	}
	if !masterEdition.Equals(programs.TokenMetadataProgramID) {
		if err := ic.CreateWithData(payer, masterEdition, []byte{6}, programs.TokenMetadataProgramID); err != nil {
			return err
		}
	}
	return nil
}

func metadataMint(ic *InvocationContext) error {
	if len(ic.Data) < 10 {
		return fmt.Errorf("InvalidInstructionData: short mint args")
	}
	amount := binary.LittleEndian.Uint64(ic.Data[2:10])
	token, _ := ic.Key(0)
	tokenOwner, _ := ic.Key(1)
	metadata, _ := ic.Key(2)
	tokenRecord, _ := ic.Key(4)
	mint, _ := ic.Key(5)
	authority, _ := ic.Key(6)
	payer, err := ic.Key(8)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(authority); err != nil {
		return err
	}
	if ic.Account(metadata) == nil {
		return &ProgramError{Code: 0x39, Msg: "metadata not found"}
	}
	mintAcc := ic.Account(mint)
	if mintAcc == nil || len(mintAcc.Data) != MintAccountSize {
		return &ProgramError{Code: 0x2a, Msg: "mint not initialized"}
	}

	tokenAcc := ic.Account(token)
	if tokenAcc == nil || len(tokenAcc.Data) == 0 {
		expected, _, err := solana.FindAssociatedTokenAddress(tokenOwner, mint)
		if err != nil {
			return err
		}
		if !expected.Equals(token) {
			return &ProgramError{Code: 0x3, Msg: "token is not the owner's associated account"}
		}
		if err := ic.CreateWithData(payer, token, tokenAccountData(mint, tokenOwner, 0), solana.TokenProgramID); err != nil {
			return err
		}
		tokenAcc = ic.Account(token)
	}
	balance := binary.LittleEndian.Uint64(tokenAcc.Data[64:72])
	binary.LittleEndian.PutUint64(tokenAcc.Data[64:72], balance+amount)
	ic.SetAccount(token, tokenAcc)

	supply := binary.LittleEndian.Uint64(mintAcc.Data[36:44])
	binary.LittleEndian.PutUint64(mintAcc.Data[36:44], supply+amount)
	ic.SetAccount(mint, mintAcc)

	if !tokenRecord.Equals(programs.TokenMetadataProgramID) && ic.Account(tokenRecord) == nil {
		return ic.CreateWithData(payer, tokenRecord, []byte{7}, programs.TokenMetadataProgramID)
	}
	return nil
}

func authRulesProgram(ic *InvocationContext) error {
	serialized, err := authRules.DecodeCreateOrUpdate(ic.Data)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	payer, _ := ic.Key(0)
	ruleSet, err := ic.Key(1)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(payer); err != nil {
		return err
	}
	if len(serialized) < 40 || binary.LittleEndian.Uint32(serialized[0:4]) != authRules.LibVersionV2 {
		return &ProgramError{Code: 0x1, Msg: "unsupported rule set version"}
	}
	if !solana.PublicKeyFromBytes(serialized[8:40]).Equals(payer) {
		return &ProgramError{Code: 0x7, Msg: "rule set owner must be the payer"}
	}
	if ic.Account(ruleSet) != nil {
		return ic.UpdateData(ruleSet, serialized)
	}
	return ic.CreateWithData(payer, ruleSet, serialized, programs.TokenAuthRulesProgramID)
}
