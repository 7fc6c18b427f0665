// Package display renders command results for terminals (pterm) and for
// machines (JSON).
package display

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/errors"
)

// ShouldOutputJSON reports whether the command's --json flag, local or
// persistent, is set.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Lookup("json") != nil && cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	if flag := cmd.Root().PersistentFlags().Lookup("json"); flag != nil {
		globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
		return globalFlag
	}
	return false
}

// OutputJSON marshals v with MarshalJSON and writes it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
