// Package builtin holds the default commands of the treefs shell.
package builtin

import "github.com/mwantia/treefs/cmd"

// Commands returns a fresh instance of every builtin command.
func Commands() []cmd.Command {
	return []cmd.Command{
		&LsCommand{},
		&FindCommand{},
		&MkdirCommand{},
		&PutCommand{},
		&GetCommand{},
		&LinkCommand{},
		&DuCommand{},
		&MvCommand{},
		&RmCommand{},
		&ZipCommand{},
		&UnzipCommand{},
		&FsCommand{},
	}
}

// Register adds every builtin command to the manager.
func Register(manager *cmd.CommandManager) error {
	for _, command := range Commands() {
		if err := manager.Register(command); err != nil {
			return err
		}
	}
	return nil
}
