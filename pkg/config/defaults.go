package config

// GetDefaultNamingConfig returns a NamingConfig with every default applied,
// useful for generating a sample configuration file.
func GetDefaultNamingConfig() *NamingConfig {
	cfg := &NamingConfig{}
	ApplyNamingDefaults(cfg)
	return cfg
}

// GetDefaultStorageConfig returns a StorageConfig with every default that
// does not require deployment-specific input applied. Root, Data.Address,
// and Command.Address are left empty; callers generating a sample file
// should fill in placeholders for those themselves.
func GetDefaultStorageConfig() *StorageConfig {
	cfg := &StorageConfig{}
	ApplyStorageDefaults(cfg)
	return cfg
}
