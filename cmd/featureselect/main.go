// Command featureselect ranks the OTUs of a mothur shared file by how well they separate the
// categories of a design file.
package main

func main() {
	Execute()
}
