package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable creates a read-only platform table and injects it into
// the Lua state as a global. Call it before loading user configuration code.
func InjectPlatformTable(L *lua.LState, d Descriptor, h HostInfo) error {
	platformTable := L.NewTable()

	L.SetField(platformTable, "os", lua.LString(d.OS))
	L.SetField(platformTable, "arch", lua.LString(d.Arch))
	L.SetField(platformTable, "tag", lua.LString(d.Tag()))

	L.SetField(platformTable, "is_linux", lua.LBool(d.OS == OSLinux))
	L.SetField(platformTable, "is_macos", lua.LBool(d.OS == OSMacOS))
	L.SetField(platformTable, "is_x86_64", lua.LBool(d.Arch == ArchX86_64))
	L.SetField(platformTable, "is_arm64", lua.LBool(d.Arch == ArchARM64))

	// Linux distribution (nil on non-Linux or when detection failed)
	if d.OS == OSLinux && h.Distro != "" {
		distroTable := L.NewTable()
		L.SetField(distroTable, "id", lua.LString(h.Distro))
		L.SetField(distroTable, "family", lua.LString(h.Family))
		L.SetField(distroTable, "version", lua.LString(h.DistroVersion))
		L.SetField(platformTable, "distro", distroTable)
	} else {
		L.SetField(platformTable, "distro", lua.LNil)
	}

	// when(condition, value) returns value if condition is true, nil otherwise
	whenFunc := L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	})
	L.SetField(platformTable, "when", whenFunc)

	L.SetGlobal("platform", makeReadOnly(L, platformTable))

	return nil
}

// makeReadOnly wraps table in an empty proxy whose metatable redirects reads
// to table and rejects every write.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()

	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)

	return proxy
}
