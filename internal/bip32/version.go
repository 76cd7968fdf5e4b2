package bip32

// KeyVersion is the 4-byte prefix of a serialized extended key.
type KeyVersion [4]byte

var (
	MainnetPublic  = KeyVersion{0x04, 0x88, 0xb2, 0x1e} // xpub
	MainnetPrivate = KeyVersion{0x04, 0x88, 0xad, 0xe4} // xprv
	TestnetPublic  = KeyVersion{0x04, 0x35, 0x87, 0xcf} // tpub
	TestnetPrivate = KeyVersion{0x04, 0x35, 0x83, 0x94} // tprv
)

func (kv KeyVersion) known() bool {
	switch kv {
	case MainnetPublic, MainnetPrivate, TestnetPublic, TestnetPrivate:
		return true
	}
	return false
}

// IsPrivate reports whether the version is for a private key.
func (kv KeyVersion) IsPrivate() bool {
	switch kv {
	case MainnetPrivate, TestnetPrivate:
		return true
	}
	return false
}

// ToPublic maps a private version to its public counterpart.
func (kv KeyVersion) ToPublic() KeyVersion {
	switch kv {
	case MainnetPrivate:
		return MainnetPublic
	case TestnetPrivate:
		return TestnetPublic
	}
	return kv
}
